package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mindmap/pkg/editor"
	"github.com/matzehuels/mindmap/pkg/errors"
	"github.com/matzehuels/mindmap/pkg/mindmap"
)

// addCommand adds a child node.
func (c *CLI) addCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <id> <parent> [label...]",
		Short: "Add an idea under a parent node",
		Long:  `Add an idea under a parent node. The new node is placed right of its parent, below its existing children. Without a label it is called "New idea".`,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var node mindmap.Node
			err := c.mutate(cmd.Context(), args[0], func(s *editor.Session) error {
				id, err := s.AddChild(args[1], strings.Join(args[2:], " "))
				if err != nil {
					return err
				}
				node, _ = s.Graph().Node(id)
				return nil
			})
			if err != nil {
				return err
			}
			printSuccess("Added %s under %s", StyleHighlight.Render(node.Label), args[1])
			printDetail("id: %s at %s", node.ID, formatPosition(node.Position))
			return nil
		},
	}
}

// connectCommand links two existing nodes.
func (c *CLI) connectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "connect <id> <source> <target>",
		Short: "Connect two nodes with an edge",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := c.mutate(cmd.Context(), args[0], func(s *editor.Session) error {
				return s.Connect(args[1], args[2])
			})
			if err != nil {
				return err
			}
			printSuccess("Connected %s %s %s", args[1], iconArrow, args[2])
			return nil
		},
	}
}

// disconnectCommand removes an edge.
func (c *CLI) disconnectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect <id> <edge>",
		Short: "Remove an edge",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := c.mutate(cmd.Context(), args[0], func(s *editor.Session) error {
				return s.Disconnect(args[1])
			})
			if err != nil {
				return err
			}
			printSuccess("Removed edge %s", args[1])
			return nil
		},
	}
}

// renameCommand relabels a node.
func (c *CLI) renameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <node> <label...>",
		Short: "Change a node's label",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			label := strings.Join(args[2:], " ")
			err := c.mutate(cmd.Context(), args[0], func(s *editor.Session) error {
				return s.Rename(args[1], label)
			})
			if err != nil {
				return err
			}
			printSuccess("Renamed %s to %s", args[1], StyleHighlight.Render(strings.TrimSpace(label)))
			return nil
		},
	}
}

// deleteCommand removes a node and its edges.
func (c *CLI) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id> <node>",
		Short: "Delete a node and the edges touching it",
		Long:  `Delete a node and the edges touching it. Children of the node stay in the map; the root cannot be deleted.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var removed int
			err := c.mutate(cmd.Context(), args[0], func(s *editor.Session) error {
				before := s.Graph().EdgeCount()
				if err := s.Delete(args[1]); err != nil {
					return err
				}
				removed = before - s.Graph().EdgeCount()
				return nil
			})
			if err != nil {
				return err
			}
			printSuccess("Deleted %s", args[1])
			printDetail("%s removed", plural(removed, "edge"))
			return nil
		},
	}
}

// moveCommand sets a node's canvas position.
func (c *CLI) moveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <node> <x> <y>",
		Short: "Move a node on the canvas",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := parsePosition(args[2], args[3])
			if err != nil {
				return err
			}
			err = c.mutate(cmd.Context(), args[0], func(s *editor.Session) error {
				return s.Move(args[1], pos)
			})
			if err != nil {
				return err
			}
			printSuccess("Moved %s to %s", args[1], formatPosition(pos))
			return nil
		},
	}
}

func parsePosition(xs, ys string) (mindmap.Position, error) {
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return mindmap.Position{}, errors.New(errors.ErrCodeInvalidInput, "invalid x %q", xs)
	}
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return mindmap.Position{}, errors.New(errors.ErrCodeInvalidInput, "invalid y %q", ys)
	}
	return mindmap.Position{X: x, Y: y}, nil
}
