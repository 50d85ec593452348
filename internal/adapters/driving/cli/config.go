package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/repoqa/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage persistent settings",
	Long: `Read and write settings in ~/.repoqa/config.toml.

Environment variables (and a .env file in the working directory) override
these values at start-up. Run "repoqa config list" to see every key.`,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print a setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Store a setting",
	Long: `Store a setting. Numbers and booleans are stored typed; everything
else is stored as a string. An empty value removes the key.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known settings and their values",
	RunE:  runConfigList,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the settings file path",
	RunE:  runConfigPath,
}

var configSetTokenCmd = &cobra.Command{
	Use:   "set-token",
	Short: "Save a GitHub token",
	Long: `Prompt for a GitHub personal access token without echoing it and save
it as the default credential. GITHUB_TOKEN takes precedence when set.`,
	Args: cobra.NoArgs,
	RunE: runConfigSetToken,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configSetTokenCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	value, ok := configStore.Get(args[0])
	if !ok {
		return fmt.Errorf("%s is not set", args[0])
	}
	cmd.Println(displayValue(args[0], value))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key, raw := args[0], strings.TrimSpace(args[1])
	if raw == "" {
		if err := configStore.Delete(key); err != nil {
			return fmt.Errorf("failed to remove %s: %w", key, err)
		}
		cmd.Printf("Removed %s\n", key)
		return nil
	}

	if err := configStore.Set(key, parseValue(raw)); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	cmd.Printf("Set %s = %s\n", key, displayValue(key, raw))
	return nil
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	known := make(map[string]bool)
	for _, k := range config.KnownKeys() {
		known[k.Key] = true
		value := "(default)"
		if v, ok := configStore.Get(k.Key); ok {
			value = displayValue(k.Key, v)
		}
		cmd.Printf("%-28s %-20s %s", k.Key, value, k.Description)
		if k.Env != "" {
			cmd.Printf(" [$%s]", k.Env)
		}
		cmd.Println()
	}

	var extra []string
	for _, key := range configStore.Keys() {
		if !known[key] {
			extra = append(extra, key)
		}
	}
	if len(extra) > 0 {
		cmd.Println()
		cmd.Println("Other keys:")
		for _, key := range extra {
			v, _ := configStore.Get(key)
			cmd.Printf("  %s = %s\n", key, displayValue(key, v))
		}
	}
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}
	cmd.Println(configStore.Path())
	return nil
}

func runConfigSetToken(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	cmd.Print("GitHub token: ")
	token := readSecret(cmd.InOrStdin())
	cmd.Println()
	if token == "" {
		return errors.New("no token entered")
	}

	if err := configStore.Set(config.KeyGitHubToken, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	cmd.Printf("Saved GitHub token %s\n", maskSecret(token))
	return nil
}

// parseValue keeps numbers and booleans typed in the TOML file.
func parseValue(raw string) any {
	switch strings.ToLower(raw) {
	case "true":
		return true
	case "false":
		return false
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

func displayValue(key string, value any) string {
	s := fmt.Sprint(value)
	if config.IsSecret(key) {
		return maskSecret(s)
	}
	return s
}

// readSecret reads one line without echo when in is a terminal.
//
//nolint:errcheck // CLI helper, error ignored for UX
func readSecret(in io.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	reader := bufio.NewReader(in)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskSecret(s string) string {
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
