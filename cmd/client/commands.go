package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/atinyakov/healthmate/internal/client"
	"github.com/atinyakov/healthmate/internal/models"
)

// app holds the global flags shared by every command.
type app struct {
	baseURL string
	dir     string
	caFile  string
	token   string
	timeout time.Duration
}

func (a *app) client() (*client.Client, error) {
	certFile, keyFile, tokenFile := client.CredentialPaths(a.dir)
	tlsCfg, err := client.TLSConfig(a.caFile, certFile, keyFile)
	if err != nil {
		return nil, err
	}
	token := a.token
	if token == "" {
		token = client.ReadToken(tokenFile)
	}
	return client.New(client.Config{BaseURL: a.baseURL, TLS: tlsCfg, Token: token, Timeout: a.timeout}), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "healthmate",
		Short:         "HealthMate vitals client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&a.baseURL, "url", "https://localhost:8080", "server base URL")
	pf.StringVar(&a.dir, "dir", ".healthmate", "directory holding client.crt, client.key and token")
	pf.StringVar(&a.caFile, "ca", "certs/ca.crt", "path to CA cert")
	pf.StringVar(&a.token, "token", "", "bearer token (defaults to the saved token)")
	pf.DurationVar(&a.timeout, "timeout", 10*time.Second, "request timeout")

	root.AddCommand(
		a.registerCmd(),
		a.loginCmd(),
		a.addCmd(),
		a.listCmd(),
		a.getCmd(),
		a.updateCmd(),
		a.deleteCmd(),
		a.summaryCmd(),
		a.chartCmd(),
		a.reportCmd(),
		a.shareCmd(),
		a.sharedCmd(),
		a.activityCmd(),
		versionCmd(),
	)
	return root
}

func (a *app) registerCmd() *cobra.Command {
	var login, name string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and save its certificate",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if login == "" {
				return errors.New("please provide --login")
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			creds, err := c.Register(cmd.Context(), login, name)
			if err != nil {
				return err
			}
			if err := client.SaveCredentials(a.dir, creds); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registration successful. Credentials saved to %s\n", a.dir)
			return nil
		},
	}
	cmd.Flags().StringVar(&login, "login", "", "login, usually an email address")
	cmd.Flags().StringVar(&name, "name", "", "display name shown on reports")
	return cmd
}

func (a *app) loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Exchange the saved certificate for a fresh token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			creds, err := c.Login(cmd.Context())
			if err != nil {
				return err
			}
			if err := client.SaveCredentials(a.dir, creds); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", creds.User)
			return nil
		},
	}
}

// vitalFlags binds the measurement flags shared by add and update.
type vitalFlags struct {
	systolic, diastolic, heartRate, spO2, weight int
	temperature                                  float64
}

func (f *vitalFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.IntVar(&f.systolic, "systolic", 0, "systolic pressure (mmHg)")
	fl.IntVar(&f.diastolic, "diastolic", 0, "diastolic pressure (mmHg)")
	fl.IntVar(&f.heartRate, "heart-rate", 0, "heart rate (BPM)")
	fl.IntVar(&f.spO2, "spo2", 0, "oxygen saturation (%)")
	fl.Float64Var(&f.temperature, "temperature", 0, "temperature (°F)")
	fl.IntVar(&f.weight, "weight", 0, "weight (lbs)")
}

// patch returns the flags the user actually set.
func (f *vitalFlags) patch(cmd *cobra.Command) models.VitalPatch {
	var p models.VitalPatch
	ints := map[string]struct {
		dst **int
		v   int
	}{
		"systolic":   {&p.Systolic, f.systolic},
		"diastolic":  {&p.Diastolic, f.diastolic},
		"heart-rate": {&p.HeartRate, f.heartRate},
		"spo2":       {&p.SpO2, f.spO2},
		"weight":     {&p.Weight, f.weight},
	}
	for name, field := range ints {
		if cmd.Flags().Changed(name) {
			v := field.v
			*field.dst = &v
		}
	}
	if cmd.Flags().Changed("temperature") {
		t := f.temperature
		p.Temperature = &t
	}
	return p
}

func (a *app) addCmd() *cobra.Command {
	var (
		vf vitalFlags
		at string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a measurement (prompts when no flags are given)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var in models.VitalInput
			p := vf.patch(cmd)
			if p.Empty() {
				var err error
				in, err = client.PromptVital(cmd.InOrStdin(), cmd.OutOrStdout())
				if err != nil {
					return err
				}
			} else {
				in = models.VitalInput{
					Systolic:    p.Systolic,
					Diastolic:   p.Diastolic,
					HeartRate:   p.HeartRate,
					SpO2:        p.SpO2,
					Temperature: p.Temperature,
					Weight:      p.Weight,
				}
			}
			if at != "" {
				ts, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at: %w", err)
				}
				in.Timestamp = models.Timestamp{Time: ts}
			}
			if err := in.Validate(); err != nil {
				return err
			}

			c, err := a.client()
			if err != nil {
				return err
			}
			rec, err := c.CreateVital(cmd.Context(), in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rec)
		},
	}
	vf.bind(cmd)
	cmd.Flags().StringVar(&at, "at", "", "capture time (RFC 3339, default now)")
	return cmd
}

func (a *app) listCmd() *cobra.Command {
	var window string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded measurements",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			records, err := c.ListVitals(cmd.Context(), window)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), records)
		},
	}
	cmd.Flags().StringVar(&window, "range", "all", "trailing day window, or all")
	return cmd
}

func (a *app) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one measurement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			rec, err := c.GetVital(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rec)
		},
	}
}

func (a *app) updateCmd() *cobra.Command {
	var vf vitalFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of one measurement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := vf.patch(cmd)
			if err := p.Validate(); err != nil {
				return err
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			rec, err := c.UpdateVital(cmd.Context(), args[0], p)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rec)
		},
	}
	vf.bind(cmd)
	return cmd
}

func (a *app) deleteCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete one measurement, or all of them with --all",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) == 1) {
				return errors.New("give either an id or --all")
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			if all {
				n, err := c.DeleteAllVitals(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d records\n", n)
				return nil
			}
			if err := c.DeleteVital(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Record deleted")
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "delete every record")
	return cmd
}

func (a *app) summaryCmd() *cobra.Command {
	var window string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show averages, insights and recommendations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			sum, err := c.Summary(cmd.Context(), window)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), sum)
		},
	}
	cmd.Flags().StringVar(&window, "range", "30", "trailing day window, or all")
	return cmd
}

func (a *app) chartCmd() *cobra.Command {
	var (
		vitalType, window string
		points            int
	)
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Show the chart series of one vital type",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			cs, err := c.Chart(cmd.Context(), vitalType, window, points)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), cs)
		},
	}
	cmd.Flags().StringVar(&vitalType, "type", "bloodPressure", "bloodPressure, heartRate, spO2 or temperature")
	cmd.Flags().StringVar(&window, "range", "30", "trailing day window, or all")
	cmd.Flags().IntVar(&points, "points", 0, "maximum number of points (default server side)")
	return cmd
}

func (a *app) reportCmd() *cobra.Command {
	var window, format, out string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Download a report as json, html or xlsx",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			doc, err := c.Report(cmd.Context(), window, format)
			if err != nil {
				return err
			}
			path := out
			if path == "" {
				path = doc.Filename
			}
			if path == "" || path == "-" {
				_, err := cmd.OutOrStdout().Write(doc.Body)
				return err
			}
			if err := os.WriteFile(path, doc.Body, 0o600); err != nil {
				return fmt.Errorf("failed to save report: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report saved to %s\n", filepath.Clean(path))
			return nil
		},
	}
	cmd.Flags().StringVar(&window, "range", "30", "trailing day window, or all")
	cmd.Flags().StringVar(&format, "format", "html", "json, html or xlsx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default server file name, - for stdout)")
	return cmd
}

func (a *app) shareCmd() *cobra.Command {
	var (
		window string
		list   bool
	)
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Publish a shared report link, or list them with --list",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			if list {
				reps, err := c.ListShares(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), reps)
			}
			link, err := c.CreateShare(cmd.Context(), window)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\nexpires %s\n", link.URL, link.Report.ExpiresAt.Format(time.RFC1123))
			return nil
		},
	}
	cmd.Flags().StringVar(&window, "range", "30", "trailing day window, or all")
	cmd.Flags().BoolVar(&list, "list", false, "list published reports")
	return cmd
}

func (a *app) sharedCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "shared <id>",
		Short: "Fetch a shared report by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			doc, err := c.Shared(cmd.Context(), args[0], format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(doc.Body)
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "json or html")
	return cmd
}

func (a *app) activityCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show recent activity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			items, err := c.Activity(cmd.Context(), limit)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, it := range items {
				fmt.Fprintf(w, "%s  %-18s %s\n", it.Timestamp.Local().Format("2006-01-02 15:04"), it.Title, it.Description)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "number of entries (max 50)")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show build version and date",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "HealthMate Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		},
	}
}
