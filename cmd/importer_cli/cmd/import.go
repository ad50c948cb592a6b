package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/SscSPs/statement_importer/internal/dto"
	"github.com/spf13/cobra"
)

const (
	importCmdAccount = "account"
	importCmdType    = "type"
	importCmdFile    = "file"
	importCmdReview  = "review"
)

func (c *cli) importCmd() *cobra.Command {
	importCmd := &cobra.Command{
		Use:     "import",
		Short:   "Import a statement file into an account",
		Example: "importer import --account=acc-1 --type=santander --file=enero.csv --review",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			accountID, _ := cmd.Flags().GetString(importCmdAccount)
			declaredType, _ := cmd.Flags().GetString(importCmdType)
			path, _ := cmd.Flags().GetString(importCmdFile)
			review, _ := cmd.Flags().GetBool(importCmdReview)

			result, err := c.services.Import.Import(cmd.Context(), dto.ImportRequest{
				AccountID:    accountID,
				DeclaredType: declaredType,
				FileName:     filepath.Base(path),
				Path:         path,
				Review:       review,
				UserID:       c.userID,
			})
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}
			return c.printJSON(dto.ToImportResultResponse(result))
		},
	}

	importCmd.Flags().StringP(importCmdAccount, "a", "", "account ID")
	importCmd.Flags().StringP(importCmdType, "t", "", "declared statement type, e.g. santander")
	importCmd.Flags().StringP(importCmdFile, "f", "", "path to the statement file")
	importCmd.Flags().BoolP(importCmdReview, "r", false, "stage the drafts for review instead of committing")
	_ = importCmd.MarkFlagRequired(importCmdAccount)
	_ = importCmd.MarkFlagRequired(importCmdType)
	_ = importCmd.MarkFlagRequired(importCmdFile)
	return importCmd
}
