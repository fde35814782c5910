package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ghuser/itemstore/services/item/application/services"
	itemdomain "github.com/ghuser/itemstore/services/item/domain"
	"github.com/ghuser/itemstore/services/item/domain/models"
)

// itemView is the printed shape of an item; it matches the HTTP response body.
type itemView struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Price       float64 `json:"price"`
	Available   bool    `json:"available"`
	CreatedAt   string  `json:"created_at"`
}

func viewOf(item *models.Item) itemView {
	v := itemView{
		ID:        item.ID.String(),
		Name:      item.Name.String(),
		Price:     item.Price.Float64(),
		Available: item.Available,
		CreatedAt: item.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if d, ok := item.DescriptionString(); ok {
		v.Description = &d
	}
	return v
}

func (c *cli) print(w io.Writer, items ...*models.Item) error {
	views := make([]itemView, 0, len(items))
	for _, it := range items {
		views = append(views, viewOf(it))
	}
	if c.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if len(views) == 1 {
			return enc.Encode(views[0])
		}
		return enc.Encode(views)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tAVAILABLE\tDESCRIPTION")
	for _, v := range views {
		desc := "-"
		if v.Description != nil {
			desc = *v.Description
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\n", v.ID, v.Name, strconv.FormatFloat(v.Price, 'f', -1, 64), v.Available, desc)
	}
	return tw.Flush()
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid item id %q: %w", raw, err)
	}
	return id, nil
}

func newListCmd(c *cli) *cobra.Command {
	var skip, limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List items in insertion order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.open(cmd, true); err != nil {
				return err
			}
			items, err := c.items.List(ctxOf(cmd), skip, limit)
			if err != nil {
				return err
			}
			return c.print(cmd.OutOrStdout(), items...)
		},
	}
	cmd.Flags().IntVar(&skip, "skip", 0, "items to skip")
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum items to return (1-100)")
	return cmd
}

func newGetCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := c.open(cmd, true); err != nil {
				return err
			}
			item, err := c.items.GetByID(ctxOf(cmd), id)
			if err != nil {
				return err
			}
			if item == nil {
				return fmt.Errorf("%w: %s", itemdomain.ErrItemNotFound, id)
			}
			return c.print(cmd.OutOrStdout(), item)
		},
	}
}

func newCreateCmd(c *cli) *cobra.Command {
	var (
		in          services.CreateItemInput
		description string
	)
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an item",
		Example: `  itemctl create Minecraft --price 450 --description "Best selling game"
  itemctl create Tetris --price 9.99 --available=false`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Name = args[0]
			if cmd.Flags().Changed("description") {
				in.Description = &description
			}
			if err := c.open(cmd, true); err != nil {
				return err
			}
			item, err := c.items.Create(ctxOf(cmd), in)
			if err != nil {
				return err
			}
			return c.print(cmd.OutOrStdout(), item)
		},
	}
	cmd.Flags().Float64Var(&in.Price, "price", 0, "price, must be positive")
	cmd.Flags().StringVar(&description, "description", "", "optional description")
	cmd.Flags().BoolVar(&in.Available, "available", true, "whether the item is available")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func newDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an item and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := c.open(cmd, true); err != nil {
				return err
			}
			item, err := c.items.Delete(ctxOf(cmd), id)
			if err != nil {
				return err
			}
			if item == nil {
				return fmt.Errorf("%w: %s", itemdomain.ErrItemNotFound, id)
			}
			return c.print(cmd.OutOrStdout(), item)
		},
	}
}
