package arguments

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// AppMetadata :
// Describes some properties used to identify the current instance
// of the application. This includes information about its behavior
// (such as the port that is exposed for external clients to target
// the app) along with identifiers that allow to distinguish among
// running instances in the logs.
//
// The `InstanceID` describes an identifier of the current instance
// of the server. Each instance has its own identifier which allows
// to start several instances of a given app on the same machine.
// This value is generated at runtime and changes upon restart of
// the application.
//
// The `Environment` is a string describing the configuration used
// to start this application. A configuration describes a set of
// values that are usually suited to launch the app on a given
// machine. Typical values include `development`, `production`,
// etc.
// The default value is "unknown".
//
// The `Port` specifies on which port the endpoints defined by the
// app can be accessed. This is useful especially in development
// environments where several APIs can run on the same machine.
// The default value is 3000.
type AppMetadata struct {
	InstanceID  string `json:"instance_id"`
	Environment string `json:"environment"`
	Port        int
}

// Parse :
// Used to parse the app arguments and produce the corresponding
// metadata. The configuration file referenced by the input string
// is loaded into the shared viper instance so that each package
// can fetch its own settings from it afterwards. Environment
// variables prefixed with `ENV` override file values.
//
// The `configFile` is a string describing the configuration file
// provided by the runtime of the application. This is the name of
// the configuration file without the extension.
//
// Returns the built-in application's properties.
func Parse(configFile string) AppMetadata {
	// Assign the environment bindings to use to reach the
	// configuration values.
	viper.SetEnvPrefix("ENV")
	replacer := strings.NewReplacer(".", "_")
	viper.SetEnvKeyReplacer(replacer)
	viper.AutomaticEnv()

	// Name of config file (without extension).
	viper.SetConfigName(configFile)

	// Look for the configuration in the working directory and
	// in the common `data/config` directory.
	viper.AddConfigPath(".")
	viper.AddConfigPath("data/config")

	// Find and read the config file.
	err := viper.ReadInConfig()
	if err != nil {
		panic(fmt.Errorf("could not parse input configuration \"%s\" (err: %v)", configFile, err))
	}

	// Create the default application properties.
	metadata := AppMetadata{
		uuid.New().String(),
		"unknown",
		3000,
	}

	// Fetch values from the configuration produced by the
	// runtime.
	if len(configFile) > 0 {
		metadata.Environment = configFile
	}
	if viper.IsSet("App.Port") {
		metadata.Port = viper.GetInt("App.Port")
	}

	return metadata
}
