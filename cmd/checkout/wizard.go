package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"travelcheckout/internal/checkout"
	"travelcheckout/internal/domain"
	"travelcheckout/internal/domain/models"
	"travelcheckout/internal/signal"
	"travelcheckout/internal/utils"
)

var errQuit = errors.New("quit")

// account is the part of the API the wizard uses directly.
type account interface {
	Login(ctx context.Context, login, password string) (models.User, error)
	MarkPayAtDeparture(ctx context.Context, bookingID string) error
	Voucher(ctx context.Context, bookingID string) ([]byte, string, error)
}

type wizard struct {
	in         *bufio.Scanner
	out        io.Writer
	deps       checkout.Deps
	account    account
	nav        *terminalNavigator
	bus        signal.Bus
	tab        string
	currency   string
	voucherDir string
}

// terminalNavigator prints external URLs for the traveler to open and remembers the last
// in-app location. While a wizard is mounted, in-app navigation only records the target:
// a ticket consumed then belongs to the draft already on screen.
type terminalNavigator struct {
	out     io.Writer
	mu      sync.Mutex
	last    string
	mounted bool
}

func (n *terminalNavigator) Navigate(_ context.Context, target string) error {
	if strings.HasPrefix(target, "https://") || strings.HasPrefix(target, "http://") {
		fmt.Fprintf(n.out, "\nOpen this link to pay:\n  %s\n", target)
		return nil
	}
	n.mu.Lock()
	n.last = target
	quiet := n.mounted
	n.mu.Unlock()
	if !quiet {
		fmt.Fprintf(n.out, "resuming %s\n", target)
	}
	return nil
}

func (n *terminalNavigator) setMounted(v bool) {
	n.mu.Lock()
	n.mounted = v
	n.mu.Unlock()
}

func (n *terminalNavigator) Last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.last
}

func (w *wizard) readLine(prompt string) (string, bool) {
	fmt.Fprint(w.out, prompt)
	if !w.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(w.in.Text()), true
}

// signIn is the in-terminal sign-in modal. A successful login publishes identity-changed
// for this tab.
func (w *wizard) signIn(ctx context.Context, returnPath string) error {
	fmt.Fprintf(w.out, "\nSign in to continue (you will return to %s)\n", returnPath)
	for attempt := 0; attempt < 3; attempt++ {
		login, ok := w.readLine("email or username: ")
		if !ok {
			return io.ErrUnexpectedEOF
		}
		password, ok := w.readLine("password: ")
		if !ok {
			return io.ErrUnexpectedEOF
		}
		u, err := w.account.Login(ctx, login, password)
		if err != nil {
			fmt.Fprintf(w.out, "sign-in failed: %v\n", err)
			continue
		}
		fmt.Fprintf(w.out, "signed in as %s\n", u.Email)
		w.bus.Publish(signal.Event{Name: signal.IdentityChanged, Tab: w.tab})
		return nil
	}
	return domain.UnauthorizedError{Msg: "sign-in abandoned"}
}

func (w *wizard) run(ctx context.Context, location string) error {
	ctrl, err := checkout.Mount(ctx, w.deps, location)
	if err != nil {
		return err
	}
	defer ctrl.Close()
	if w.nav != nil {
		w.nav.setMounted(true)
		defer w.nav.setMounted(false)
	}

	for {
		st := ctrl.State()
		if st.Done() {
			return w.finish(ctx, st)
		}
		if st.Pending == checkout.PendingIdentity {
			if err := w.waitIdentity(ctx, ctrl); err != nil {
				if errors.Is(err, errQuit) {
					return nil
				}
				return err
			}
			continue
		}

		w.render(st)
		line, ok := w.readLine("> ")
		if !ok {
			return nil
		}
		if err := w.dispatch(ctx, ctrl, st, line); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			fmt.Fprintf(w.out, "error: %v\n", err)
		}
	}
}

// waitIdentity resolves a suspended identity step: either a sign-in already happened and
// its signal is waiting, or the traveler tries again or goes back.
func (w *wizard) waitIdentity(ctx context.Context, ctrl *checkout.Controller) error {
	if _, ok := w.signedIn(ctx); ok {
		return ctrl.AwaitIdentity(ctx)
	}
	answer, ok := w.readLine("Not signed in. Try again? [y/N] ")
	if !ok {
		return errQuit
	}
	if strings.EqualFold(answer, "y") {
		if err := w.signIn(ctx, ctrl.Location()); err != nil {
			fmt.Fprintf(w.out, "error: %v\n", err)
			return nil
		}
		return ctrl.AwaitIdentity(ctx)
	}
	return ctrl.Retreat()
}

func (w *wizard) signedIn(ctx context.Context) (models.Identity, bool) {
	id, ok, err := w.deps.Identity.CurrentIdentity(ctx)
	if err != nil {
		return models.Identity{}, false
	}
	return id, ok
}

func (w *wizard) money(amount int64) string {
	return utils.FormatAmount(w.currency, amount)
}

func (w *wizard) render(st checkout.State) {
	d := st.Draft
	fmt.Fprintf(w.out, "\n== Step %d/3 · %s ==\n", st.Step, d.Meta().Name)
	switch st.Step {
	case checkout.StepDetails:
		s := d.Schedule()
		if d.Kind() == domain.SubjectRoom {
			fmt.Fprintf(w.out, "check-in: %s  nights: %d  guests: %d (max %d)\n", s.Date, s.Nights, d.Party()[checkout.CategoryGuests], d.Reference().Capacity)
		} else {
			fmt.Fprintf(w.out, "date: %s  time: %s\n", s.Date, s.Time)
		}
		b := d.Breakdown()
		for _, l := range b.Lines {
			fmt.Fprintf(w.out, "  %-28s %3d x %s = %s\n", l.Label, l.Quantity, w.money(l.UnitPrice), w.money(l.Amount()))
		}
		if b.Discount > 0 {
			fmt.Fprintf(w.out, "  discount %.0f%%  -%s\n", b.DiscountPct, w.money(b.Discount))
		}
		fmt.Fprintf(w.out, "  total %s\n", w.money(b.Total))
		if d.Kind() == domain.SubjectRoom {
			fmt.Fprintln(w.out, "commands: date YYYY-MM-DD | nights N | guests N | next | quit")
		} else {
			cats := make([]string, 0, len(d.Reference().UnitPrices))
			for _, p := range d.Reference().UnitPrices {
				cats = append(cats, p.Category)
			}
			fmt.Fprintf(w.out, "commands: date YYYY-MM-DD | time HH:MM | <%s> N | next | quit\n", strings.Join(cats, "|"))
		}
	case checkout.StepIdentity:
		id := d.Identity()
		for _, f := range checkout.AllIdentityFields {
			v := id.Get(f)
			lock := ""
			if v.Locked {
				lock = " (from your profile)"
			}
			fmt.Fprintf(w.out, "  %-8s %s%s\n", f, v.Value, lock)
		}
		fmt.Fprintln(w.out, "commands: <field> value | next | back | quit")
	case checkout.StepPayment:
		fmt.Fprintf(w.out, "total %s  method: %s", w.money(d.Total()), d.PaymentMethod())
		if d.BankHint() != "" {
			fmt.Fprintf(w.out, " (%s)", d.BankHint())
		}
		fmt.Fprintln(w.out)
		if d.Strategy().AllowsCash() {
			fmt.Fprintln(w.out, "commands: gateway [bank] | cash | pay | back | quit")
		} else {
			fmt.Fprintln(w.out, "commands: gateway [bank] | pay | back | quit")
		}
	}
	if st.Err != nil {
		fmt.Fprintf(w.out, "! %v\n", st.Err)
	}
}

func (w *wizard) dispatch(ctx context.Context, ctrl *checkout.Controller, st checkout.State, line string) error {
	cmd, arg, _ := strings.Cut(line, " ")
	cmd, arg = strings.ToLower(cmd), strings.TrimSpace(arg)

	switch cmd {
	case "":
		return nil
	case "quit", "q":
		return errQuit
	case "next":
		return ctrl.Advance(ctx)
	case "back":
		return ctrl.Retreat()
	}

	switch st.Step {
	case checkout.StepDetails:
		s := st.Draft.Schedule()
		switch cmd {
		case "date":
			s.Date = arg
			return ctrl.SetSchedule(s)
		case "time":
			s.Time = arg
			return ctrl.SetSchedule(s)
		case "nights":
			n, err := strconv.Atoi(arg)
			if err != nil {
				return domain.ValidationError{Field: "nights", Msg: "not a number"}
			}
			s.Nights = n
			return ctrl.SetSchedule(s)
		}
		n, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("unknown command %q", line)
		}
		return ctrl.SetPartyCount(ctx, cmd, n)
	case checkout.StepIdentity:
		f, ok := checkout.ParseIdentityField(cmd)
		if !ok {
			return fmt.Errorf("unknown field %q", cmd)
		}
		return ctrl.SetIdentityField(f, arg)
	case checkout.StepPayment:
		switch cmd {
		case "cash":
			return ctrl.SelectPayment(domain.PaymentCash, "")
		case "gateway":
			return ctrl.SelectPayment(domain.PaymentGateway, arg)
		case "pay":
			return ctrl.Submit(ctx)
		}
	}
	return fmt.Errorf("unknown command %q", line)
}

// finish reports the outcome. Cash bookings are confirmed on the server and the voucher
// saved next to the traveler.
func (w *wizard) finish(ctx context.Context, st checkout.State) error {
	if st.Outcome.Kind != checkout.OutcomePayAtDeparture {
		fmt.Fprintf(w.out, "booking %s created, complete the payment in your browser\n", st.Outcome.BookingID)
		return nil
	}
	if st.Outcome.Message != "" {
		fmt.Fprintln(w.out, st.Outcome.Message)
	}
	id := st.Outcome.BookingID
	if err := w.account.MarkPayAtDeparture(ctx, id); err != nil {
		return fmt.Errorf("confirm cash booking %s: %w", id, err)
	}
	pdf, name, err := w.account.Voucher(ctx, id)
	if err != nil {
		return fmt.Errorf("download voucher: %w", err)
	}
	path := filepath.Join(w.voucherDir, filepath.Base(name))
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(w.out, "voucher saved to %s\n", path)
	return nil
}
