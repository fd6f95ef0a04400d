package util

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/squirreldb/squirreldb-go/rpc/common"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		// Add the word
		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupClientFlags adds the common connection flags to a command
func SetupClientFlags(cmd *cobra.Command) {
	key := "host"
	cmd.PersistentFlags().String(key, "localhost", WrapString("The hostname or IP address of the SquirrelDB server"))

	key = "port"
	cmd.PersistentFlags().Int(key, common.DefaultPort, WrapString("The TCP port of the SquirrelDB server"))

	key = "auth-token"
	cmd.PersistentFlags().String(key, "", WrapString("The authentication token sent during the handshake"))

	key = "prefer-msgpack"
	cmd.PersistentFlags().Bool(key, true, WrapString("Whether to advertise msgpack support during the handshake (the server makes the final choice)"))

	key = "connect-timeout"
	cmd.PersistentFlags().Int(key, 5000, WrapString("The connect and handshake timeout in milliseconds"))

	key = "request-timeout"
	cmd.PersistentFlags().Int(key, 30000, WrapString("The per-request timeout in milliseconds"))

	key = "buffered-subscriptions"
	cmd.PersistentFlags().Bool(key, false, WrapString("Whether to deliver change events via per-subscription queues instead of the connection's reader"))

	key = "transport-write-buffer"
	cmd.PersistentFlags().Int(key, 0, WrapString("The size of the socket write buffer (in KB, 0 keeps the OS default)"))

	key = "transport-read-buffer"
	cmd.PersistentFlags().Int(key, 0, WrapString("The size of the socket read buffer (in KB, 0 keeps the OS default)"))

	key = "transport-tcp-nodelay"
	cmd.PersistentFlags().Bool(key, true, WrapString("Whether to enable TCP_NODELAY for the connection"))

	key = "transport-tcp-keepalive"
	cmd.PersistentFlags().Int(key, 0, WrapString("The keepalive interval for the connection (in seconds, 0 disables keepalive)"))

	key = "transport-tcp-linger"
	cmd.PersistentFlags().Int(key, -1, WrapString("The linger time for the connection (in seconds, -1 keeps the OS default)"))
}

// InitClientConfig initializes configuration from environment variables
func InitClientConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("sqrl")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// GetClientConfig reads client configuration from viper
func GetClientConfig() *common.ClientConfig {
	conf := common.DefaultClientConfig(viper.GetString("host"))

	conf.Port = viper.GetInt("port")
	conf.AuthToken = viper.GetString("auth-token")
	conf.PreferMsgpack = viper.GetBool("prefer-msgpack")
	conf.ConnectTimeoutMs = viper.GetInt("connect-timeout")
	conf.RequestTimeoutMs = viper.GetInt("request-timeout")
	conf.BufferedSubscriptions = viper.GetBool("buffered-subscriptions")

	conf.Transport = common.TransportConfig{
		Socket: common.SocketConf{
			WriteBufferSize: viper.GetInt("transport-write-buffer") * 1024,
			ReadBufferSize:  viper.GetInt("transport-read-buffer") * 1024,
		},
		TCP: common.TCPConf{
			NoDelay:      viper.GetBool("transport-tcp-nodelay"),
			KeepAliveSec: viper.GetInt("transport-tcp-keepalive"),
			LingerSec:    viper.GetInt("transport-tcp-linger"),
		},
	}

	return &conf
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}
