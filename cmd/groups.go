package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/mdobak/go-xerrors"
	"github.com/siahsang/yatube/internal/core"
	"github.com/siahsang/yatube/internal/utils/databaseutils"
	"github.com/siahsang/yatube/internal/validator"
	"github.com/siahsang/yatube/models"
	"github.com/spf13/cobra"
)

var ErrInvalidGroup = xerrors.Message("Invalid group")

func (c *cli) groupCommand() *cobra.Command {
	group := &cobra.Command{
		Use:   "group",
		Short: "Manage post groups",
	}

	var title, slug, description string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a group",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := c.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB(db, c.logger)

			coreService := core.NewCore(c.logger, databaseutils.NewSQLTemplate(db, c.config.DBTimeout))
			created, err := createGroup(cmd.Context(), coreService, title, slug, description)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "created group %q (/group/%s/)\n", created.Title, created.Slug)
			return err
		},
	}
	create.Flags().StringVar(&title, "title", "", "group title")
	create.Flags().StringVar(&slug, "slug", "", "URL slug, derived from the title when empty")
	create.Flags().StringVar(&description, "description", "", "group description")
	_ = create.MarkFlagRequired("title")

	list := &cobra.Command{
		Use:   "list",
		Short: "List groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := c.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB(db, c.logger)

			coreService := core.NewCore(c.logger, databaseutils.NewSQLTemplate(db, c.config.DBTimeout))
			groups, err := coreService.ListGroups(cmd.Context())
			if err != nil {
				return err
			}

			return writeGroups(cmd.OutOrStdout(), groups)
		},
	}

	group.AddCommand(create, list)
	return group
}

func writeGroups(out io.Writer, groups []*models.Group) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "ID\tSLUG\tTITLE"); err != nil {
		return xerrors.New(err)
	}
	for _, g := range groups {
		if _, err := fmt.Fprintf(tw, "%d\t%s\t%s\n", g.ID, g.Slug, g.Title); err != nil {
			return xerrors.New(err)
		}
	}
	if err := tw.Flush(); err != nil {
		return xerrors.New(err)
	}
	return nil
}

func createGroup(ctx context.Context, coreService *core.Core, title, slug, description string) (*models.Group, error) {
	title = strings.TrimSpace(title)
	slug = strings.TrimSpace(slug)
	if slug == "" {
		slug = coreService.CreateSlug(title)
		if slug == "" && title != "" {
			return nil, xerrors.Newf("%w: cannot derive a slug from title %q, pass --slug", ErrInvalidGroup, title)
		}
	}

	v := validator.New()
	v.CheckNotBlank(title, "title", "must be provided")
	v.CheckMaxLength(title, 200, "title", "must be at most 200 characters")
	v.Check(validator.IsMatch(slug, validator.SlugRX), "slug", "must contain only letters, digits, hyphens and underscores")
	v.CheckMaxLength(slug, 50, "slug", "must be at most 50 characters")
	if !v.IsValid() {
		return nil, xerrors.Newf("%w: %v", ErrInvalidGroup, v.Errors)
	}

	created, err := coreService.CreateGroup(ctx, &models.Group{Title: title, Slug: slug, Description: description})
	if err != nil {
		if errors.Is(err, core.ErrDuplicatedSlug) {
			return nil, xerrors.Newf("%w: slug %q is taken", ErrInvalidGroup, slug)
		}
		return nil, err
	}
	return created, nil
}
