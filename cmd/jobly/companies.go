package main

import (
	"github.com/spf13/cobra"

	"github.com/Skryldev/jobly/models"
)

func newCompaniesCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "companies",
		Aliases: []string{"company"},
		Short:   "Create, list, show, update and delete companies",
	}

	cmd.AddCommand(newCompaniesListCommand(a))
	cmd.AddCommand(newCompaniesGetCommand(a))
	cmd.AddCommand(newCompaniesCreateCommand(a))
	cmd.AddCommand(newCompaniesUpdateCommand(a))
	cmd.AddCommand(newCompaniesDeleteCommand(a))

	return cmd
}

func newCompaniesListCommand(a *app) *cobra.Command {
	var filters []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List companies ordered by name",
		Long:  "List companies. Filters: name (substring), minEmployees, maxEmployees.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			criteria, err := parseFilters(filters)
			if err != nil {
				return err
			}
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			companies, err := svc.ListCompanies(cmd.Context(), criteria)
			if err != nil {
				return err
			}
			return a.printJSON(companies)
		},
	}

	cmd.Flags().StringArrayVarP(&filters, "filter", "f", nil, "filter as key=value (repeatable)")
	return cmd
}

func newCompaniesGetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <handle>",
		Short: "Show a company and its jobs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			c, err := svc.GetCompany(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printJSON(c)
		},
	}
}

func newCompaniesCreateCommand(a *app) *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a company from a JSON document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := readData(cmd, data)
			if err != nil {
				return err
			}
			var p models.CreateCompanyParams
			if err := decodeStrict(raw, &p); err != nil {
				return err
			}
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			c, err := svc.CreateCompany(cmd.Context(), p)
			if err != nil {
				return err
			}
			return a.printJSON(c)
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", `company JSON, or "-" for stdin`)
	return cmd
}

func newCompaniesUpdateCommand(a *app) *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "update <handle>",
		Short: "Update some fields of a company",
		Long:  "Update a company. Fields: name, description, numEmployees, logoUrl.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readData(cmd, data)
			if err != nil {
				return err
			}
			payload, err := decodePayload(raw)
			if err != nil {
				return err
			}
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			c, err := svc.UpdateCompany(cmd.Context(), args[0], payload)
			if err != nil {
				return err
			}
			return a.printJSON(c)
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", `fields as a JSON object, or "-" for stdin`)
	return cmd
}

func newCompaniesDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <handle>",
		Short: "Delete a company and its jobs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			if err := svc.DeleteCompany(cmd.Context(), args[0]); err != nil {
				return err
			}
			return a.printJSON(map[string]string{"deleted": args[0]})
		},
	}
}
