package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mindmap/pkg/codec"
	"github.com/matzehuels/mindmap/pkg/document"
	"github.com/matzehuels/mindmap/pkg/editor"
	"github.com/matzehuels/mindmap/pkg/store"
)

// newCommand creates a document.
func (c *CLI) newCommand() *cobra.Command {
	var (
		description string
		category    string
		visibility  string
		tags        []string
	)

	cmd := &cobra.Command{
		Use:   "new <title>",
		Short: "Create a mind map",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc := document.New(strings.Join(args, " "))
			doc.Description = description
			doc.Category = category
			doc.Tags = tags
			v, err := document.ParseVisibility(visibility)
			if err != nil {
				return err
			}
			doc.Visibility = v
			doc.Normalize()
			if err := doc.Validate(); err != nil {
				return err
			}

			err = c.withStore(cmd.Context(), func(st store.Store) error {
				return st.Save(cmd.Context(), doc)
			})
			if err != nil {
				return err
			}

			printSuccess("Created %s", StyleHighlight.Render(doc.Title))
			printDetail("id: %s", doc.ID)
			printNextStep("Add an idea", fmt.Sprintf("%s add %s root \"First idea\"", appName, doc.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "document description")
	cmd.Flags().StringVar(&category, "category", "", "document category")
	cmd.Flags().StringVar(&visibility, "visibility", "private", "public, private or collaborative")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "tag (repeatable)")
	return cmd
}

// listCommand lists stored documents.
func (c *CLI) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List mind maps, most recently updated first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var list []document.Summary
			err := c.withStore(cmd.Context(), func(st store.Store) error {
				var err error
				list, err = st.List(cmd.Context())
				return err
			})
			if err != nil {
				return err
			}
			if len(list) == 0 {
				printInfo("No mind maps yet")
				printNextStep("Create one", appName+" new \"My topic\"")
				return nil
			}

			rows := make([][]string, len(list))
			for i, s := range list {
				rows[i] = []string{
					s.ID,
					s.Title,
					fmt.Sprint(s.Nodes),
					string(s.Status),
					s.UpdatedAt.Local().Format(time.DateTime),
				}
			}
			printTable([]string{"ID", "Title", "Nodes", "Status", "Updated"}, rows)
			return nil
		},
	}
}

// showCommand prints a document and its outline.
func (c *CLI) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a mind map as an outline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				sess, err := editor.Open(cmd.Context(), st, args[0], c.sessionOptions()...)
				if err != nil {
					return err
				}
				doc := sess.Snapshot()
				g := sess.Graph()

				fmt.Fprintln(stdout, StyleTitle.Render(doc.Title))
				if doc.Description != "" {
					fmt.Fprintln(stdout, StyleDim.Render(doc.Description))
				}
				printKeyValue("id", doc.ID)
				printKeyValue("visibility", string(doc.Visibility))
				printKeyValue("status", string(doc.Status))
				if len(doc.Tags) > 0 {
					printKeyValue("tags", strings.Join(doc.Tags, ", "))
				}
				printStats(g.NodeCount(), g.EdgeCount())
				fmt.Fprintln(stdout)
				fmt.Fprint(stdout, formatTree(g))
				if sess.Dirty() {
					printWarning("Stored graph needed repair; save it with any edit to keep the fix")
				}
				return nil
			})
		},
	}
}

// removeCommand deletes a document.
func (c *CLI) removeCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a mind map",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := c.withStore(cmd.Context(), func(st store.Store) error {
				return st.Delete(cmd.Context(), args[0])
			})
			if err != nil {
				return err
			}
			printSuccess("Removed %s", args[0])
			return nil
		},
	}
}

// importCommand creates a document from a JSON or YAML graph file.
func (c *CLI) importCommand() *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Create a mind map from a JSON or YAML graph file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, report, err := codec.Import(args[0])
			if err != nil {
				return err
			}
			if report.Changed() {
				printWarning("Repaired %s while importing", plural(len(report.Issues), "issue"))
				for _, issue := range report.Issues {
					printDetail("%s", issue)
				}
			}

			if title == "" {
				title = g.Root().Label
			}
			doc := document.New(title)
			doc.SetMindMap(g)
			if err := doc.Validate(); err != nil {
				return err
			}
			err = c.withStore(cmd.Context(), func(st store.Store) error {
				return st.Save(cmd.Context(), doc)
			})
			if err != nil {
				return err
			}

			printSuccess("Imported %s", StyleHighlight.Render(doc.Title))
			printDetail("id: %s", doc.ID)
			printStats(g.NodeCount(), g.EdgeCount())
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "document title (default: root label)")
	return cmd
}

// exportCommand writes a document's graph as JSON or YAML.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		output string
		format string
	)

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Write a mind map's graph as JSON or YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var f codec.Format
			if format != "" {
				var err error
				if f, err = codec.ParseFormat(format); err != nil {
					return err
				}
			}

			return c.withStore(cmd.Context(), func(st store.Store) error {
				sess, err := editor.Open(cmd.Context(), st, args[0], c.sessionOptions()...)
				if err != nil {
					return err
				}
				if output == "" {
					return codec.Write(sess.Graph(), stdout, f)
				}
				if err := codec.Export(sess.Graph(), output, f); err != nil {
					return err
				}
				abs, _ := filepath.Abs(output)
				printSuccess("Exported %s", args[0])
				printFile(abs)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&format, "format", "", "json or yaml (default: from file extension, else json)")
	return cmd
}
