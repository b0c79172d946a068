package model_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"starhold_server/internal/model"
)

func TestCheckIdentifier_AcceptsGameKeys(t *testing.T) {
	for _, id := range []string{
		"metalMine",
		"small_cargo",
		"agent42",
		"A",
	} {
		assert.NoError(t, model.CheckIdentifier(id), id)
	}
}

func TestCheckIdentifier_RejectsMalformedKeys(t *testing.T) {
	for _, id := range []string{
		"",
		"metal mine",
		"metal-mine",
		"métal",
		"a;drop table agents",
		strings.Repeat("a", 65),
	} {
		assert.Equal(t, model.ErrMalformedIdentifier, model.CheckIdentifier(id), id)
	}
}

func TestCheckIdentifier_RejectsReservedWords(t *testing.T) {
	for _, id := range []string{
		"__proto__",
		"constructor",
		"prototype",
		"hasOwnProperty",
		"toString",
		"valueOf",
	} {
		assert.Equal(t, model.ErrReservedIdentifier, model.CheckIdentifier(id), id)
	}
}
