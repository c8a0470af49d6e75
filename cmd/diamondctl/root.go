package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Skotchmaster/diamond_shop/internal/apiclient"
	"github.com/Skotchmaster/diamond_shop/internal/config"
	"github.com/Skotchmaster/diamond_shop/internal/db"
	"github.com/Skotchmaster/diamond_shop/internal/events"
	"github.com/Skotchmaster/diamond_shop/internal/logging"
	"github.com/Skotchmaster/diamond_shop/internal/mykafka"
	"github.com/Skotchmaster/diamond_shop/internal/remote"
	"github.com/Skotchmaster/diamond_shop/internal/repo"
	"github.com/Skotchmaster/diamond_shop/internal/storefront"
)

// app is the state one diamondctl invocation works with: the workspace of
// the selected session profile and the resources backing it.
type app struct {
	profile string
	apiURL  string

	out  io.Writer
	gdb  *gorm.DB
	prod *mykafka.Producer
	ws   *storefront.Workspace
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          "diamondctl",
		Short:        "Operate the diamond marketplace from a terminal",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.profile, "profile", "", "session profile (default $SESSION_PROFILE)")
	root.PersistentFlags().StringVar(&a.apiURL, "api", "", "backend base url (default $API_BASE_URL)")

	root.AddCommand(
		newLoginCmd(a),
		newRegisterCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newDiamondsCmd(a),
		newCartCmd(a),
		newWishlistCmd(a),
		newOrdersCmd(a),
		newNotificationsCmd(a),
		newInventoryCmd(a),
		newDashboardCmd(a),
		newUploadCmd(a),
	)
	return root
}

func (a *app) open(cmd *cobra.Command) error {
	cfg := config.Load()
	if a.apiURL != "" {
		cfg.APIBaseURL = a.apiURL
	}
	if a.profile != "" {
		cfg.SessionProfile = a.profile
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	logger := logging.FromContext(ctx)

	gdb, err := db.Open(ctx, cfg.SessionDSN)
	if err != nil {
		return fmt.Errorf("session db: %w", err)
	}
	a.gdb = gdb
	store := &repo.GormRepo{DB: gdb}
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	var pub events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		a.prod, err = mykafka.NewProducer(cfg.KafkaBrokers, cfg.EventsTopic)
		if err != nil {
			return err
		}
		pub = a.prod
	}

	hub := storefront.NewHub(storefront.Deps{
		BaseURL: cfg.APIBaseURL,
		Client: apiclient.Options{
			Timeout: cfg.APITimeout,
			RPS:     cfg.APIRPS,
			Burst:   cfg.APIBurst,
			Logger:  logger,
		},
		Store:  store,
		Events: pub,
	})
	a.ws, err = hub.Workspace(ctx, cfg.SessionProfile)
	if err != nil {
		return err
	}
	a.out = cmd.OutOrStdout()
	return nil
}

func (a *app) close() {
	if a.prod != nil {
		if err := a.prod.Close(); err != nil {
			log.Printf("kafka close error: %v", err)
		}
		a.prod = nil
	}
	if a.gdb != nil {
		if err := db.Close(a.gdb); err != nil {
			log.Printf("db close error: %v", err)
		}
		a.gdb = nil
	}
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// fail renders err the way the storefront shows operation errors.
func fail(err error) error {
	if err == nil {
		return nil
	}
	return errors.New(remote.ErrorMessage(err))
}
