package cmd

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"bus-booking/internal/status"
	"bus-booking/models"
	"bus-booking/services"

	"github.com/spf13/cobra"
)

var (
	seatMapCmd = &cobra.Command{
		Use:   "seatmap <schedule-id>",
		Short: "Show the seat map of a schedule",
		Args:  cobra.ExactArgs(1),
		RunE:  withApp(runSeatMap),
	}
	quoteCmd = &cobra.Command{
		Use:   "quote",
		Short: "Price a booking with an optional promo code",
		RunE:  withApp(runQuote),
	}
	offersCmd = &cobra.Command{
		Use:   "offers",
		Short: "List promo offers",
		RunE:  withApp(runOffers),
	}
	bookCmd = &cobra.Command{
		Use:   "book",
		Short: "Pay for and book seats",
		RunE:  withApp(runBook),
	}
	bookingsCmd = &cobra.Command{
		Use:   "bookings",
		Short: "List my bookings",
		RunE:  withApp(runBookings),
	}
	cancelCmd = &cobra.Command{
		Use:   "cancel <booking-id>",
		Short: "Cancel a booking",
		Args:  cobra.ExactArgs(1),
		RunE:  withApp(runCancel),
	}
	rateCmd = &cobra.Command{
		Use:   "rate <booking-id> <stars>",
		Short: "Rate a completed trip",
		Args:  cobra.ExactArgs(2),
		RunE:  withApp(runRate),
	}
)

func init() {
	for _, c := range []*cobra.Command{quoteCmd, bookCmd} {
		c.Flags().Int("schedule", 0, "schedule id")
		c.Flags().String("seats", "", "comma separated seat labels, e.g. 1A,1B")
		c.Flags().Int("count", 0, "number of seats when no labels are given")
		c.Flags().String("promo", "", "promo code")
	}
	cancelCmd.Flags().String("reason", "", "cancellation reason")
	rateCmd.Flags().String("comment", "", "optional comment")

	rootCmd.AddCommand(seatMapCmd, quoteCmd, offersCmd, bookCmd, bookingsCmd, cancelCmd, rateCmd)
}

func parseID(raw, what string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, status.Invalid("args", fmt.Sprintf("invalid %s %q", what, raw))
	}
	return id, nil
}

func printNotice(w io.Writer, fromCache bool, notice string) {
	if notice != "" {
		fmt.Fprintln(w, notice)
	} else if fromCache {
		fmt.Fprintln(w, "(cached)")
	}
}

func runSeatMap(cmd *cobra.Command, args []string, a *app) error {
	id, err := parseID(args[0], "schedule id")
	if err != nil {
		return err
	}
	m, err := a.session.SelectSchedule(cmd.Context(), id)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprint(out, m.Text())
	fmt.Fprintf(out, "Reserved: %d\n", len(m.Reserved))
	printNotice(out, m.FromCache, m.Notice)
	return nil
}

// selectFromFlags applies --schedule and --seats and returns the manual count.
func selectFromFlags(cmd *cobra.Command, a *app) (int, string, error) {
	scheduleID, _ := cmd.Flags().GetInt("schedule")
	rawSeats, _ := cmd.Flags().GetString("seats")
	count, _ := cmd.Flags().GetInt("count")
	promo, _ := cmd.Flags().GetString("promo")

	if scheduleID > 0 {
		if _, err := a.session.SelectSchedule(cmd.Context(), scheduleID); err != nil {
			return 0, "", err
		}
	}
	for _, label := range splitLabels(rawSeats) {
		if _, err := a.session.Toggle(label); err != nil {
			return 0, "", err
		}
	}
	return count, promo, nil
}

func printQuote(w io.Writer, q models.FareQuote) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Seats\t%d\n", q.SeatCount)
	fmt.Fprintf(tw, "Base\t%d\n", q.BaseAmount)
	fmt.Fprintf(tw, "Discount\t%d\n", q.Discount)
	fmt.Fprintf(tw, "Total\t%d\n", q.FinalAmount)
	tw.Flush()
	if q.Message != "" {
		fmt.Fprintln(w, q.Message)
	}
}

func runQuote(cmd *cobra.Command, _ []string, a *app) error {
	count, promo, err := selectFromFlags(cmd, a)
	if err != nil {
		return err
	}
	q, err := a.session.Quote(cmd.Context(), count, promo)
	if err != nil {
		return err
	}
	printQuote(cmd.OutOrStdout(), q)
	return nil
}

func runOffers(cmd *cobra.Command, _ []string, a *app) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tTITLE\tDETAILS")
	for _, o := range a.session.Offers() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", o.Code, o.Title, o.Description)
	}
	return tw.Flush()
}

func runBook(cmd *cobra.Command, _ []string, a *app) error {
	count, promo, err := selectFromFlags(cmd, a)
	if err != nil {
		return err
	}
	conf, err := a.session.Book(cmd.Context(), services.BookInput{ManualSeats: count, PromoCode: promo})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Booking confirmed: %s\n", conf.BookingID)
	printQuote(out, conf.Quote)
	return nil
}

func runBookings(cmd *cobra.Command, _ []string, a *app) error {
	res := a.session.LoadMyBookings(cmd.Context())
	out := cmd.OutOrStdout()
	printNotice(out, res.FromCache, res.Notice)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tROUTE\tDEPARTURE\tSEATS\tSTATUS\tRATING")
	for _, v := range res.Items {
		rating := "-"
		if v.Rating > 0 {
			rating = strconv.Itoa(v.Rating)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\n",
			v.Booking.ID, v.RouteLabel, v.ScheduleLabel, v.Booking.Seats, v.Status, rating)
	}
	return tw.Flush()
}

func runCancel(cmd *cobra.Command, args []string, a *app) error {
	id, err := parseID(args[0], "booking id")
	if err != nil {
		return err
	}
	reason, _ := cmd.Flags().GetString("reason")

	// loads the booking so the cancellation window can be checked
	a.session.LoadMyBookings(cmd.Context())
	out, err := a.session.Cancel(cmd.Context(), id, reason)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Booking %d cancelled. %s\n", out.BookingID, out.Policy)
	return nil
}

func runRate(cmd *cobra.Command, args []string, a *app) error {
	id, err := parseID(args[0], "booking id")
	if err != nil {
		return err
	}
	stars, err := strconv.Atoi(args[1])
	if err != nil {
		return status.Invalid("args", "Please select a star rating.")
	}
	comment, _ := cmd.Flags().GetString("comment")

	a.session.LoadMyBookings(cmd.Context())
	if err := a.session.Rate(cmd.Context(), id, stars, comment); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Thanks for your feedback!")
	return nil
}
