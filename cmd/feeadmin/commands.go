package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"
	"syscall"

	"golang.org/x/term"

	"feeadmin/internal/api"
	"feeadmin/internal/core"
	"feeadmin/internal/log"
	"feeadmin/internal/render"
	"feeadmin/internal/services"
	"feeadmin/internal/session"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type application struct {
	client *api.Client
	store  *session.Store
	matrix *services.MatrixService
	status *services.StatusService
	log    *log.Logger
	out    io.Writer
}

func (app *application) run(ctx context.Context, args []string) error {
	switch args[0] {
	case "login":
		return app.login(ctx, args[1:])
	case "logout":
		return app.logout()
	case "whoami":
		return app.whoami()
	case "years":
		return app.years(ctx)
	case "terms":
		return app.terms(ctx, args[1:])
	case "matrix":
		return app.matrixCommand(ctx, args[1:])
	case "status":
		return app.statusCommand(ctx, args[1:])
	case "parents":
		return app.parents(ctx, args[1:])
	case "discounts":
		return app.discounts(ctx, args[1:])
	case "structures":
		return app.structures(ctx, args[1:])
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		printUsage()
		return errHelp
	}
}

func (app *application) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		fs.Usage()
		return errHelp
	}

	fmt.Fprint(app.out, "Password: ")
	password, err := readPasswordFunc(syscall.Stdin)
	fmt.Fprintln(app.out)
	if err != nil {
		return err
	}

	tokens, err := app.client.Login(ctx, *email, string(password))
	if err != nil {
		return err
	}
	if err := app.store.Set(tokens); err != nil {
		return err
	}
	fmt.Fprintf(app.out, "Logged in as %s\n", *email)
	return nil
}

func (app *application) logout() error {
	if err := app.store.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(app.out, "Logged out")
	return nil
}

func (app *application) whoami() error {
	claims, err := app.store.Claims()
	if errors.Is(err, session.ErrNoSession) {
		fmt.Fprintln(app.out, "Not logged in")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(app.out, "Subject: %s\n", claims.Subject)
	if claims.Email != "" {
		fmt.Fprintf(app.out, "Email:   %s\n", claims.Email)
	}
	if !claims.ExpiresAt.IsZero() {
		fmt.Fprintf(app.out, "Expires: %s\n", claims.ExpiresAt)
	}
	return nil
}

func (app *application) years(ctx context.Context) error {
	years, err := app.client.ListAcademicYears(ctx)
	if err != nil {
		return err
	}
	return render.Years(app.out, years)
}

func (app *application) terms(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("terms", flag.ExitOnError)
	yearID := fs.String("year", "", "academic year ID (default: current year)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := app.resolveYear(ctx, *yearID)
	if err != nil {
		return err
	}
	terms, err := app.client.ListTerms(ctx, id)
	if err != nil {
		return err
	}
	return render.Terms(app.out, terms)
}

func (app *application) matrixCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("matrix", flag.ExitOnError)
	yearID := fs.String("year", "", "academic year ID (default: current year)")
	classID := fs.String("class", "", "class ID for the line-item drill-down")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := app.resolveYear(ctx, *yearID)
	if err != nil {
		return err
	}
	result, err := app.matrix.Build(ctx, id)
	if err != nil {
		return err
	}
	if *classID == "" {
		return render.Matrix(app.out, result)
	}
	for _, row := range result.Rows {
		if row.ClassID == *classID {
			return render.LineItems(app.out, row, result.Terms)
		}
	}
	return fmt.Errorf("class %s has no fee structures in year %s", *classID, id)
}

func (app *application) statusCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	yearID := fs.String("year", "", "academic year ID (default: current year)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := app.resolveYear(ctx, *yearID)
	if err != nil {
		return err
	}
	lines, err := app.status.Build(ctx, id)
	if err != nil {
		return err
	}
	return render.Status(app.out, lines)
}

func (app *application) parents(ctx context.Context, args []string) error {
	if len(args) == 0 {
		parents, err := app.client.ListParents(ctx)
		if err != nil {
			return err
		}
		return render.Parents(app.out, parents)
	}

	switch args[0] {
	case "add", "edit":
		fs := flag.NewFlagSet("parents "+args[0], flag.ExitOnError)
		id := fs.String("id", "", "parent ID (edit only)")
		first := fs.String("first", "", "first name")
		last := fs.String("last", "", "last name")
		email := fs.String("email", "", "email address")
		phone := fs.String("phone", "", "phone number")
		address := fs.String("address", "", "postal address")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		input := api.ParentInput{
			FirstName: *first,
			LastName:  *last,
			Email:     *email,
			Phone:     *phone,
			Address:   *address,
		}
		if args[0] == "add" {
			parent, err := app.client.CreateParent(ctx, input)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.out, "Created parent %s (%s)\n", parent.FullName(), parent.ID)
			return nil
		}
		if *id == "" {
			fs.Usage()
			return errHelp
		}
		parent, err := app.client.UpdateParent(ctx, *id, input)
		if err != nil {
			return err
		}
		fmt.Fprintf(app.out, "Updated parent %s (%s)\n", parent.FullName(), parent.ID)
		return nil
	default:
		printUsage()
		return errHelp
	}
}

func (app *application) discounts(ctx context.Context, args []string) error {
	if len(args) == 0 {
		discounts, err := app.client.ListDiscounts(ctx)
		if err != nil {
			return err
		}
		return render.Discounts(app.out, discounts)
	}

	switch args[0] {
	case "add":
		fs := flag.NewFlagSet("discounts add", flag.ExitOnError)
		name := fs.String("name", "", "discount name")
		kind := fs.String("type", "percentage", "percentage or fixed")
		percent := fs.Int("percent", 0, "percent value for percentage discounts")
		amount := fs.String("amount", "", "decimal amount for fixed discounts")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		discount, err := app.client.CreateDiscount(ctx, api.DiscountInput{
			Name:       *name,
			Type:       *kind,
			Percentage: *percent,
			Amount:     *amount,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(app.out, "Created discount %s (%s)\n", discount.Name, discount.ID)
		return nil
	case "enable", "disable":
		fs := flag.NewFlagSet("discounts "+args[0], flag.ExitOnError)
		id := fs.String("id", "", "discount ID")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *id == "" {
			fs.Usage()
			return errHelp
		}
		discount, err := app.client.SetDiscountActive(ctx, *id, args[0] == "enable")
		if err != nil {
			return err
		}
		fmt.Fprintf(app.out, "Discount %s active=%t\n", discount.Name, discount.Active)
		return nil
	default:
		printUsage()
		return errHelp
	}
}

func (app *application) structures(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] != "add" {
		printUsage()
		return errHelp
	}
	fs := flag.NewFlagSet("structures add", flag.ExitOnError)
	classID := fs.String("class", "", "class ID")
	termID := fs.String("term", "", "term ID")
	var items itemsFlag
	fs.Var(&items, "item", "line item as NAME=AMOUNT[:annual]; repeatable")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	summary, err := app.client.CreateFeeStructure(ctx, api.CreateFeeStructureInput{
		ClassID:   *classID,
		TermID:    *termID,
		LineItems: items,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(app.out, "Created fee structure %s for class %s, term %s\n",
		summary.ID, summary.ClassID, summary.TermID)
	return nil
}

// resolveYear returns the given year ID unchanged, or looks up the current
// academic year (falling back to the latest by start date) when empty.
func (app *application) resolveYear(ctx context.Context, yearID string) (string, error) {
	if yearID != "" {
		return yearID, nil
	}
	years, err := app.client.ListAcademicYears(ctx)
	if err != nil {
		return "", err
	}
	if len(years) == 0 {
		return "", errors.New("no academic years defined")
	}
	for _, year := range years {
		if year.IsCurrent {
			return year.ID, nil
		}
	}
	sort.SliceStable(years, func(i, j int) bool {
		return years[j].StartDate.Before(years[i].StartDate)
	})
	return years[0].ID, nil
}

// itemsFlag collects repeated -item NAME=AMOUNT[:annual] flags.
type itemsFlag []api.LineItemInput

func (f *itemsFlag) String() string {
	parts := make([]string, 0, len(*f))
	for _, item := range *f {
		parts = append(parts, item.ItemName+"="+item.Amount)
	}
	return strings.Join(parts, ",")
}

func (f *itemsFlag) Set(value string) error {
	item, err := parseItemSpec(value)
	if err != nil {
		return err
	}
	*f = append(*f, item)
	return nil
}

func parseItemSpec(spec string) (api.LineItemInput, error) {
	name, rest, ok := strings.Cut(spec, "=")
	if !ok || name == "" || rest == "" {
		return api.LineItemInput{}, fmt.Errorf("invalid item %q: want NAME=AMOUNT[:annual]", spec)
	}
	amount, suffix, hasSuffix := strings.Cut(rest, ":")
	annual := false
	if hasSuffix {
		if suffix != "annual" {
			return api.LineItemInput{}, fmt.Errorf("invalid item %q: unknown suffix %q", spec, suffix)
		}
		annual = true
	}
	if _, err := core.ParseAmountToCents(amount); err != nil {
		return api.LineItemInput{}, fmt.Errorf("invalid item %q: %w", spec, err)
	}
	return api.LineItemInput{ItemName: name, Amount: amount, IsAnnual: annual}, nil
}
