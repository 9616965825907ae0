package main

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Skryldev/jobly/models"
)

func newJobsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "jobs",
		Aliases: []string{"job"},
		Short:   "Create, list, show, update and delete jobs",
	}

	cmd.AddCommand(newJobsListCommand(a))
	cmd.AddCommand(newJobsGetCommand(a))
	cmd.AddCommand(newJobsCreateCommand(a))
	cmd.AddCommand(newJobsUpdateCommand(a))
	cmd.AddCommand(newJobsDeleteCommand(a))

	return cmd
}

func parseJobID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("job id %q: not an integer", s)
	}
	return id, nil
}

func newJobsListCommand(a *app) *cobra.Command {
	var filters []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs",
		Long:  "List jobs. Filters: title (substring), minSalary, hasEquity.",
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
			jobs, err := svc.ListJobs(cmd.Context(), criteria)
			if err != nil {
				return err
			}
			return a.printJSON(jobs)
		},
	}

	cmd.Flags().StringArrayVarP(&filters, "filter", "f", nil, "filter as key=value (repeatable)")
	return cmd
}

func newJobsGetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseJobID(args[0])
			if err != nil {
				return err
			}
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			j, err := svc.GetJob(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.printJSON(j)
		},
	}
}

func newJobsCreateCommand(a *app) *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create one job, or several at once from a JSON array",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := readData(cmd, data)
			if err != nil {
				return err
			}
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}

			if bytes.HasPrefix(raw, []byte("[")) {
				var params []models.CreateJobParams
				if err := decodeStrict(raw, &params); err != nil {
					return err
				}
				jobs, err := svc.CreateJobs(cmd.Context(), params)
				if err != nil {
					return err
				}
				return a.printJSON(jobs)
			}

			var p models.CreateJobParams
			if err := decodeStrict(raw, &p); err != nil {
				return err
			}
			j, err := svc.CreateJob(cmd.Context(), p)
			if err != nil {
				return err
			}
			return a.printJSON(j)
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", `job JSON object or array, or "-" for stdin`)
	return cmd
}

func newJobsUpdateCommand(a *app) *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update some fields of a job",
		Long:  "Update a job. Fields: title, salary, equity.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseJobID(args[0])
			if err != nil {
				return err
			}
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
			j, err := svc.UpdateJob(cmd.Context(), id, payload)
			if err != nil {
				return err
			}
			return a.printJSON(j)
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", `fields as a JSON object, or "-" for stdin`)
	return cmd
}

func newJobsDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseJobID(args[0])
			if err != nil {
				return err
			}
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			if err := svc.DeleteJob(cmd.Context(), id); err != nil {
				return err
			}
			return a.printJSON(map[string]int64{"deleted": id})
		},
	}
}
