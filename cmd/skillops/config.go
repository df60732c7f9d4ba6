package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jingkaihe/skillops/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long:  `Print the configuration after defaults, config file, environment and flags are applied, as YAML.`,
	Run: func(cmd *cobra.Command, _ []string) {
		out, err := marshalConfig(appConfig(cmd.Context()))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error formatting configuration: %s\n", err)
			os.Exit(1)
		}
		fmt.Print(out)
	},
}

func marshalConfig(cfg *config.Config) (string, error) {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
