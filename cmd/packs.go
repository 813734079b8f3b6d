package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scopecraft/presales-cli/internal/model"
)

var packsCmd = &cobra.Command{
	Use:   "packs",
	Short: "Manage stored policy packs",
	Long: "Commands for versioning policy packs in the store. Engine commands use the\n" +
		"latest stored pack named \"default\" unless a pack file is configured.",
}

// -- packs push --

var packsPushName string

var packsPushCmd = &cobra.Command{
	Use:   "push <pack-file>",
	Short: "Validate a pack file and store it as a new version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		body, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrap(err, "packs push: read file")
		}
		pack, err := model.ParsePolicyPack(body)
		if err != nil {
			return err
		}

		name := packsPushName
		if name == "" {
			name = pack.Name
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		version, err := st.SavePolicyPack(ctx, name, body)
		if err != nil {
			return eris.Wrap(err, "packs push")
		}
		zap.L().Info("policy pack stored",
			zap.String("name", name),
			zap.Int("version", version))
		fmt.Printf("Stored pack %s version %d.\n", name, version)
		return nil
	},
}

// -- packs show --

var (
	packsShowName    string
	packsShowVersion int
)

var packsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a stored pack's YAML body",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		body, version, err := st.GetPolicyPack(ctx, packsShowName, packsShowVersion)
		if err != nil {
			return eris.Wrap(err, "packs show")
		}

		fmt.Fprintf(os.Stderr, "# %s version %d\n", packsShowName, version)
		_, _ = os.Stdout.Write(body)
		return nil
	},
}

func init() {
	packsPushCmd.Flags().StringVar(&packsPushName, "name", "", "pack name (default from the file's name field)")

	packsShowCmd.Flags().StringVar(&packsShowName, "name", "default", "pack name")
	packsShowCmd.Flags().IntVar(&packsShowVersion, "version", 0, "pack version (0 for latest)")

	packsCmd.AddCommand(packsPushCmd)
	packsCmd.AddCommand(packsShowCmd)
	rootCmd.AddCommand(packsCmd)
}
