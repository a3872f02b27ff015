package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mindmap/pkg/editor"
	"github.com/matzehuels/mindmap/pkg/store"
)

// editCommand opens the interactive editor.
func (c *CLI) editCommand() *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Edit a mind map interactively",
		Long: `Open a mind map in the terminal editor. Without an id, or when the id
cannot be loaded, a new document is started; it is stored on the first save.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var id string
			if len(args) == 1 {
				id = args[0]
			}

			return c.withStore(ctx, func(st store.Store) error {
				sess, created, err := editor.OpenOrCreate(ctx, st, id, title, c.sessionOptions()...)
				if err != nil {
					return err
				}
				if created {
					c.Logger.Debug("editing new document", "id", sess.ID())
				}

				final, err := tea.NewProgram(NewEditorModel(ctx, sess, st), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
				if err != nil {
					return fmt.Errorf("editor: %w", err)
				}

				m := final.(EditorModel)
				if m.Session().Dirty() {
					printWarning("Discarded unsaved changes to %s", sess.Title())
					return nil
				}
				printSuccess("Closed %s", StyleHighlight.Render(sess.Title()))
				printDetail("ID: %s", sess.ID())
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "Untitled", "title for a new document")
	return cmd
}
