package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/diamond_shop/internal/transport"
	"github.com/Skotchmaster/diamond_shop/internal/upload"
)

func newInventoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "inventory", Short: "Manage the supplier's inventory"}

	var ff filterFlags
	list := &cobra.Command{
		Use:   "list",
		Short: "List own inventory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ws.Inventory.Fetch(cmd.Context(), ff.filter(cmd)); err != nil {
				return fail(err)
			}
			return a.print(a.ws.Inventory.Items.View())
		},
	}
	ff.bind(list)

	var fields map[string]string
	add := &cobra.Command{
		Use:     "add",
		Short:   "Add a diamond by hand",
		Example: "  diamondctl inventory add --set stockId=S-1 --set carat=1.02 --set price=5400 --set shape=Round",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			form := make(map[string]any, len(fields))
			for k, v := range fields {
				form[k] = v
			}
			d, err := a.ws.Inventory.AddManual(cmd.Context(), form)
			if err != nil {
				return fail(err)
			}
			return a.print(d)
		},
	}
	add.Flags().StringToStringVar(&fields, "set", nil, "field=value, repeatable")

	del := &cobra.Command{
		Use:   "delete STOCK_ID",
		Short: "Delete a diamond from inventory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ws.Inventory.Delete(cmd.Context(), args[0]); err != nil {
				return fail(err)
			}
			return a.print(a.ws.Inventory.Items.MutationState())
		},
	}

	cmd.AddCommand(list, add, del)
	return cmd
}

func newDashboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show supplier statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := a.ws.Dashboard.Fetch(cmd.Context())
			if err != nil {
				return fail(err)
			}
			return a.print(stats)
		},
	}
}

// sourceFlags selects the import source: a preset file or exactly one of the
// csv, http and ftp flag groups.
type sourceFlags struct {
	preset     string
	saveTo     string
	overrides  map[string]string
	csv        string
	http       transport.HTTPSourceRequest
	ftp        transport.FTPSourceRequest
	loaded     *upload.Preset
	csvAbsPath string
}

func (sf *sourceFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&sf.preset, "mapping", "", "YAML preset with source and mapping")
	fs.StringVar(&sf.saveTo, "save-mapping", "", "write the source and final mapping to this YAML preset")
	fs.StringVar(&sf.csv, "csv", "", "local CSV file")
	fs.StringVar(&sf.http.URL, "url", "", "HTTP feed url")
	fs.StringVar(&sf.http.Method, "method", "", "HTTP feed method")
	fs.StringToStringVar(&sf.http.Headers, "header", nil, "HTTP feed request header name=value, repeatable")
	fs.StringVar(&sf.http.DataPath, "data-path", "", "JSON path of the rows in the HTTP feed")
	fs.StringVar(&sf.ftp.Host, "ftp-host", "", "FTP host")
	fs.IntVar(&sf.ftp.Port, "ftp-port", 0, "FTP port (default 21)")
	fs.StringVar(&sf.ftp.User, "ftp-user", "", "FTP user")
	fs.StringVar(&sf.ftp.Password, "ftp-password", "", "FTP password (default $FTP_PASSWORD)")
	fs.StringVar(&sf.ftp.Path, "ftp-path", "", "FTP file path")
	fs.StringToStringVar(&sf.overrides, "set", nil, "field=header applied after the preset or auto-mapping, repeatable")
}

func (sf *sourceFlags) source() (upload.Source, error) {
	if sf.ftp.Password == "" {
		sf.ftp.Password = os.Getenv("FTP_PASSWORD")
	}
	if sf.preset != "" {
		p, err := upload.LoadPreset(sf.preset)
		if err != nil {
			return nil, err
		}
		sf.loaded = &p
		src, err := p.Source(filepath.Dir(sf.preset))
		if err != nil {
			return nil, err
		}
		if f, ok := src.(*upload.FTPSource); ok && f.Password == "" {
			f.Password = sf.ftp.Password
		}
		if p.Kind == upload.KindCSV {
			sf.csvAbsPath = p.CSV
			if !filepath.IsAbs(p.CSV) {
				sf.csvAbsPath = filepath.Join(filepath.Dir(sf.preset), p.CSV)
			}
		}
		return src, nil
	}

	switch {
	case sf.csv != "":
		sf.csvAbsPath = sf.csv
		return upload.OpenCSV(sf.csv)
	case sf.http.URL != "":
		return &upload.HTTPSource{HTTPSourceRequest: sf.http}, nil
	case sf.ftp.Host != "":
		return &upload.FTPSource{FTPSourceRequest: sf.ftp}, nil
	}
	return nil, errors.New("a source is required: --mapping, --csv, --url or --ftp-host")
}

// mapping applies the preset mapping, or the auto-mapping without one, and
// then the --set overrides.
func (sf *sourceFlags) mapping(b *upload.Builder) error {
	if sf.loaded != nil {
		if err := b.Apply(sf.loaded.Mapping); err != nil {
			return fmt.Errorf("preset mapping: %w", err)
		}
	} else {
		b.AutoMap()
	}
	return b.Apply(sf.overrides)
}

func (sf *sourceFlags) save(b *upload.Builder) error {
	if sf.saveTo == "" {
		return nil
	}
	p := upload.PresetFor(b.Source(), b.Mapping())
	if p.Kind == upload.KindCSV && sf.csvAbsPath != "" {
		abs, err := filepath.Abs(sf.csvAbsPath)
		if err != nil {
			return err
		}
		p.CSV = abs
	}
	return upload.SavePreset(sf.saveTo, p)
}

func newUploadCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "upload", Short: "Bulk import inventory from CSV, HTTP or FTP"}

	preview := func(cmd *cobra.Command, sf *sourceFlags) error {
		src, err := sf.source()
		if err != nil {
			return err
		}
		if _, err := a.ws.Upload.Preview(cmd.Context(), src); err != nil {
			return fail(err)
		}
		return nil
	}

	var previewFlags sourceFlags
	previewCmd := &cobra.Command{
		Use:   "preview",
		Short: "List the source's headers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := preview(cmd, &previewFlags); err != nil {
				return err
			}
			return a.print(a.ws.Upload.Builder.View())
		},
	}
	previewFlags.bind(previewCmd)

	var automapFlags sourceFlags
	automapCmd := &cobra.Command{
		Use:   "automap",
		Short: "Propose a mapping from the source's headers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sf := &automapFlags
			if err := preview(cmd, sf); err != nil {
				return err
			}
			a.ws.Upload.Builder.AutoMap()
			if err := a.ws.Upload.Builder.Apply(sf.overrides); err != nil {
				return err
			}
			if err := sf.save(a.ws.Upload.Builder); err != nil {
				return err
			}
			return a.print(a.ws.Upload.Builder.View())
		},
	}
	automapFlags.bind(automapCmd)

	var submitFlags sourceFlags
	submitCmd := &cobra.Command{
		Use:   "submit",
		Short: "Import the source with the preset or auto-mapping",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sf := &submitFlags
			b := a.ws.Upload.Builder
			if err := preview(cmd, sf); err != nil {
				return err
			}
			if err := sf.mapping(b); err != nil {
				return err
			}
			if err := sf.save(b); err != nil {
				return err
			}
			if _, err := a.ws.Upload.Submit(cmd.Context()); err != nil {
				return fail(err)
			}
			return a.print(b.View())
		},
	}
	submitFlags.bind(submitCmd)

	cmd.AddCommand(previewCmd, automapCmd, submitCmd)
	return cmd
}
