package cmd

import (
	"fmt"

	"github.com/SscSPs/statement_importer/internal/core/domain"
	"github.com/SscSPs/statement_importer/internal/dto"
	"github.com/spf13/cobra"
)

func (c *cli) batchCmd() *cobra.Command {
	batchCmd := &cobra.Command{
		Use:   "batch",
		Short: "Review staged imports",
	}

	showCmd := &cobra.Command{
		Use:   "show <batch-id>",
		Short: "Show a batch with its proposed transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			batch, err := c.services.ImportBatch.GetBatch(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.printJSON(dto.ToBatchResponse(batch))
		},
	}

	listCmd := &cobra.Command{
		Use:     "list",
		Short:   "List an account's batches, newest first",
		Example: "importer batch list --account=acc-1 --status=pending",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			accountID, _ := cmd.Flags().GetString("account")
			statusFlag, _ := cmd.Flags().GetString("status")
			limit, _ := cmd.Flags().GetInt("limit")
			next, _ := cmd.Flags().GetString("next")

			var status *domain.ImportBatchStatus
			if statusFlag != "" {
				s := domain.ImportBatchStatus(statusFlag)
				status = &s
			}
			var nextToken *string
			if next != "" {
				nextToken = &next
			}
			batches, token, err := c.services.ImportBatch.ListBatches(cmd.Context(), accountID, status, limit, nextToken)
			if err != nil {
				return err
			}
			return c.printJSON(dto.ToListBatchesResponse(batches, token))
		},
	}
	listCmd.Flags().StringP("account", "a", "", "account ID")
	listCmd.Flags().StringP("status", "s", "", "pending, applied or rejected")
	listCmd.Flags().Int("limit", 20, "page size")
	listCmd.Flags().String("next", "", "token of the next page")
	_ = listCmd.MarkFlagRequired("account")

	approveCmd := &cobra.Command{
		Use:   "approve <batch-id>",
		Short: "Commit a pending batch's non-duplicate transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			batch, result, err := c.services.ImportBatch.ApproveBatch(cmd.Context(), args[0], c.userID)
			if err != nil {
				return fmt.Errorf("approve failed: %w", err)
			}
			return c.printJSON(map[string]any{
				"batch":  dto.ToBatchResponse(batch),
				"result": dto.ToImportResultResponse(result),
			})
		},
	}

	rejectCmd := &cobra.Command{
		Use:     "reject <batch-id>",
		Short:   "Reject a pending batch",
		Example: `importer batch reject 5f0c... --reason="wrong account"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reason, _ := cmd.Flags().GetString("reason")
			batch, err := c.services.ImportBatch.RejectBatch(cmd.Context(), args[0], reason, c.userID)
			if err != nil {
				return fmt.Errorf("reject failed: %w", err)
			}
			return c.printJSON(dto.ToBatchResponse(batch))
		},
	}
	rejectCmd.Flags().String("reason", "", "why the batch is rejected")
	_ = rejectCmd.MarkFlagRequired("reason")

	batchCmd.AddCommand(showCmd, listCmd, approveCmd, rejectCmd)
	return batchCmd
}
