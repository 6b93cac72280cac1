package main

import (
	"fmt"

	"skilltree_backend/internal/service"
	"skilltree_backend/pkg/logger"

	"github.com/spf13/cobra"
)

var (
	seedTitle string
	seedFile  string
)

var seedCmd = &cobra.Command{
	Use:   "seed [compositionId]",
	Short: "Create a skilltree in a composition and fill it from a YAML seed file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seed, err := service.LoadSeed(seedFile)
		if err != nil {
			return fmt.Errorf("load seed: %w", err)
		}
		e, err := newEnv(seed)
		if err != nil {
			return err
		}
		defer logger.Log.Sync()

		tree, err := e.compositions.CreateSkilltree(cmd.Context(), args[0], service.SkilltreeRequest{
			Title:       seedTitle,
			WithExample: true,
		})
		if err != nil {
			return err
		}
		cmd.Printf("created skilltree %s (%s)\n", tree.ID, tree.Path())
		return nil
	},
}

var repairCmd = &cobra.Command{
	Use:   "repair-order [parentPath]",
	Short: "Renumber a sibling group so orders run 0..n-1",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(nil)
		if err != nil {
			return err
		}
		defer logger.Log.Sync()

		changed, err := e.orders.Repair(cmd.Context(), args[0], "cli")
		if err != nil {
			return err
		}
		cmd.Printf("%d records renumbered under %s\n", changed, args[0])
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete [path]",
	Short: "Delete a record and everything below it, then renumber its siblings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(nil)
		if err != nil {
			return err
		}
		defer logger.Log.Sync()

		if err := e.compositions.DeletePath(cmd.Context(), args[0]); err != nil {
			return err
		}
		cmd.Printf("deleted %s\n", args[0])
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedTitle, "title", "t", "Imported skilltree", "Title of the new skilltree")
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "Seed YAML; the built-in example is used when empty")

	rootCmd.AddCommand(seedCmd, repairCmd, deleteCmd)
}
