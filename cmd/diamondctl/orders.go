package main

import (
	"github.com/spf13/cobra"

	"github.com/Skotchmaster/diamond_shop/internal/models"
	"github.com/Skotchmaster/diamond_shop/internal/remote"
)

func newOrdersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "orders", Short: "Inspect orders"}

	var minePage, sellerPage int
	mine := &cobra.Command{
		Use:   "mine",
		Short: "List orders placed by the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ws.Orders.FetchMine(cmd.Context(), minePage); err != nil {
				return fail(err)
			}
			return a.print(a.ws.Orders.Mine.View())
		},
	}
	mine.Flags().IntVar(&minePage, "page", 1, "page number")

	seller := &cobra.Command{
		Use:   "seller",
		Short: "List orders containing the supplier's diamonds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ws.Orders.FetchSeller(cmd.Context(), sellerPage); err != nil {
				return fail(err)
			}
			return a.print(a.ws.Orders.Seller.View())
		},
	}
	seller.Flags().IntVar(&sellerPage, "page", 1, "page number")

	get := &cobra.Command{
		Use:   "get ORDER_ID",
		Short: "Show one order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := a.ws.Orders.Order(cmd.Context(), args[0])
			if err != nil {
				return fail(err)
			}
			return a.print(o)
		},
	}

	cmd.AddCommand(mine, seller, get)
	return cmd
}

type notificationsView struct {
	remote.View[models.Notification]
	Unread int `json:"unread"`
}

func newNotificationsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "notifications", Short: "Read notifications"}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List notifications",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := a.ws.Notifications.Fetch(cmd.Context()); err != nil {
					return fail(err)
				}
				return a.print(notificationsView{a.ws.Notifications.Items.View(), a.ws.Notifications.Unread()})
			},
		},
		&cobra.Command{
			Use:   "read NOTIFICATION_ID",
			Short: "Mark one notification read",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				n, err := a.ws.Notifications.MarkRead(cmd.Context(), args[0])
				if err != nil {
					return fail(err)
				}
				return a.print(n)
			},
		},
		&cobra.Command{
			Use:   "read-all",
			Short: "Mark every notification read",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := a.ws.Notifications.MarkAllRead(cmd.Context()); err != nil {
					return fail(err)
				}
				return a.print(notificationsView{a.ws.Notifications.Items.View(), a.ws.Notifications.Unread()})
			},
		},
	)
	return cmd
}
