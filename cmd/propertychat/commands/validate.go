package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"propertychat/internal/model"
	"propertychat/internal/repository"

	"github.com/spf13/cobra"
)

var validateKind string

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a listings catalog or area directory file",
	Long: `Validate a listings catalog or area directory file against the schema and
the listing invariants. Every violation is reported. The kind is guessed from
the file name unless --kind is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		out := cmd.OutOrStdout()
		switch kind := resolveKind(path, validateKind); kind {
		case "areas":
			areas, err := repository.ParseAreas(path, data)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s: %d areas OK\n", path, len(areas))
		case "listings":
			listings, err := repository.ParseListings(path, data)
			if err != nil {
				return err
			}
			rent, sale := 0, 0
			for _, l := range listings {
				if l.Type == model.TypeSale {
					sale++
				} else {
					rent++
				}
			}
			fmt.Fprintf(out, "%s: %d listings OK (%d to rent, %d for sale)\n", path, len(listings), rent, sale)
		default:
			return fmt.Errorf("unknown kind %q (want listings or areas)", kind)
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateKind, "kind", "auto", "file kind: listings, areas or auto")
}

func resolveKind(path, kind string) string {
	if kind != "" && kind != "auto" {
		return kind
	}
	if strings.Contains(strings.ToLower(filepath.Base(path)), "area") {
		return "areas"
	}
	return "listings"
}
