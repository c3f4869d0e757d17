package item

import (
	"context"

	"github.com/xbocquet/twcatele/internal/cmdutil"
	"github.com/xbocquet/twcatele/internal/itemsort"
	"github.com/xbocquet/twcatele/internal/platform/domain"

	"github.com/spf13/cobra"
)

// NewCommand returns the "item" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "List and inspect the items of a collection",
		Long: `List the items of a collection with sorting and paging, or show the
properties of a single item.`,
	}

	cmd.PersistentFlags().String("project", "", "Project ID (defaults to current-project)")
	cmd.PersistentFlags().String("collection", "", "Collection ID (required)")
	cmd.MarkPersistentFlagRequired("collection")

	cmd.AddCommand(ListCommand())
	cmd.AddCommand(ShowCommand())

	return cmd
}

// isTelemetryCollection reports whether the collection holds telemetry
// items. --telemetry forces it; otherwise the collection class decides.
func isTelemetryCollection(ctx context.Context, cmd *cobra.Command, sess *cmdutil.Session, project domain.Project, collectionID string) bool {
	if forced, _ := cmd.Flags().GetBool("telemetry"); forced {
		return true
	}
	c, err := sess.Catalog.Collection(ctx, project, collectionID)
	if err != nil {
		return false
	}
	return c.String("_itemClass") == itemsort.ClassTelemetryCollection
}
