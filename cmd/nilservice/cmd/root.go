package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config mirrors the transport Options every engine accepts, loadable
// from a YAML file via --config (gopkg.in/yaml.v3 tags, bound through
// viper so CLI flags still override file values).
type Config struct {
	Host    string `mapstructure:"host" yaml:"host"`
	Port    int    `mapstructure:"port" yaml:"port"`
	Route   string `mapstructure:"route" yaml:"route"`
	Buffer  int    `mapstructure:"buffer" yaml:"buffer"`
	Timeout int    `mapstructure:"timeout" yaml:"timeout"` // seconds, datagram only
	CertDir string `mapstructure:"cert-dir" yaml:"cert-dir"` // wss/https servers only
}

var (
	cfgFile string
	cfg     Config
)

var rootCmd = &cobra.Command{
	Use:   "nilservice",
	Short: "Exercise the nilservice transport engines from the command line",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "YAML config file (host/port/route/buffer/timeout)")
	pf.String("host", "127.0.0.1", "bind or dial host")
	pf.Int("port", 0, "bind or dial port (0 = ephemeral, server only)")
	pf.String("route", "/", "websocket/http route")
	pf.Int("buffer", 0, "per-connection read buffer size (0 = transport default)")
	pf.Int("timeout", 0, "datagram liveness timeout in seconds (0 = transport default)")
	pf.String("cert-dir", "", "directory containing cert.pem/key.pem/dh.pem (wss/https servers only)")

	_ = viper.BindPFlag("host", pf.Lookup("host"))
	_ = viper.BindPFlag("port", pf.Lookup("port"))
	_ = viper.BindPFlag("route", pf.Lookup("route"))
	_ = viper.BindPFlag("buffer", pf.Lookup("buffer"))
	_ = viper.BindPFlag("timeout", pf.Lookup("timeout"))
	_ = viper.BindPFlag("cert-dir", pf.Lookup("cert-dir"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		viper.SetConfigType("yaml")
		if err := viper.ReadInConfig(); err != nil {
			logrus.WithError(err).Warn("could not read config file, falling back to flags")
		}
	}
	if err := viper.Unmarshal(&cfg); err != nil {
		logrus.WithError(err).Warn("could not decode config")
	}
}
