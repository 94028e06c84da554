// campusctl is a terminal client for the marketplace. It keeps the session
// and any entries saved while the server was unreachable in a state file.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sudo-init-do/campusgigs/internal/apperr"
	"github.com/sudo-init-do/campusgigs/internal/client"
	"github.com/sudo-init-do/campusgigs/internal/marketplace"
	"github.com/sudo-init-do/campusgigs/internal/models"
)

const usage = `usage: campusctl [-api URL] [-state FILE] <command> [args]

commands:
  login -email E [-name N] [-credential JWT]
  logout
  services [-q QUERY] [-category C]
  search QUERY
  add-cart -service ID -link URL -message TEXT [-qty N] [-offer PRICE]
  rm-cart ID
  cart
  wish SERVICE_ID
  wishlist
  checkout
  orders
  profile [-phone P] [-usn U] [-semester S]
  contact
  inventory
`

func main() {
	fs := flag.NewFlagSet("campusctl", flag.ExitOnError)
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	apiURL := fs.String("api", envOr("API_URL", client.DefaultBaseURL), "server base URL")
	statePath := fs.String("state", defaultStatePath(), "local state file")
	_ = fs.Parse(os.Args[1:])

	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(2)
	}

	s, err := client.NewStore(client.NewAPI(*apiURL), client.NewLocalFile(*statePath))
	if err != nil {
		fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := run(ctx, s, fs.Arg(0), fs.Args()[1:]); err != nil {
		fatal(err)
	}
	if n := s.State().Notice; n != "" {
		fmt.Fprintln(os.Stderr, n)
	}
}

func run(ctx context.Context, s *client.Store, cmd string, args []string) error {
	switch cmd {
	case "login":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		email := fs.String("email", "", "college email")
		name := fs.String("name", "", "display name")
		credential := fs.String("credential", "", "Google ID token")
		_ = fs.Parse(args)
		u, err := s.SignIn(ctx, marketplace.LoginInput{Email: *email, Name: *name, Credential: *credential})
		if err != nil {
			return err
		}
		return printJSON(u)

	case "logout":
		return s.SignOut()

	case "services":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		q := fs.String("q", "", "search title, description, host and tags")
		category := fs.String("category", "all", "category filter")
		_ = fs.Parse(args)
		services, err := s.LoadCatalog(ctx)
		if err != nil {
			return err
		}
		printServices(client.FilterServices(services, *q, *category))
		return nil

	case "search":
		services, err := s.LoadCatalog(ctx)
		if err != nil {
			return err
		}
		printServices(client.FilterServices(services, strings.Join(args, " "), "all"))
		return nil

	case "add-cart":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		id := fs.String("service", "", "service id")
		link := fs.String("link", "", "portfolio link")
		msg := fs.String("message", "", "note to the host")
		qty := fs.Int("qty", 1, "quantity")
		offer := fs.Float64("offer", 0, "negotiation price")
		_ = fs.Parse(args)
		if _, err := s.LoadCatalog(ctx); err != nil {
			return err
		}
		in := client.Interest{Quantity: *qty, PortfolioLink: *link, Message: *msg}
		if *offer > 0 {
			in.NegotiationPrice = offer
		}
		items, err := s.AddToCart(ctx, *id, in)
		if err != nil {
			return err
		}
		return printJSON(items)

	case "rm-cart":
		if len(args) != 1 {
			return apperr.BadRequest("rm-cart takes one entry id")
		}
		if err := s.Refresh(ctx); err != nil {
			return err
		}
		items, err := s.RemoveFromCart(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(items)

	case "cart":
		if err := s.Refresh(ctx); err != nil {
			return err
		}
		return printJSON(s.State().Cart)

	case "wish":
		if len(args) != 1 {
			return apperr.BadRequest("wish takes one service id")
		}
		if _, err := s.LoadCatalog(ctx); err != nil {
			return err
		}
		if err := s.Refresh(ctx); err != nil {
			return err
		}
		items, err := s.ToggleWishlist(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(items)

	case "wishlist":
		if err := s.Refresh(ctx); err != nil {
			return err
		}
		return printJSON(s.State().Wishlist)

	case "checkout":
		if err := s.Refresh(ctx); err != nil {
			return err
		}
		orders, err := s.Checkout(ctx)
		if err != nil {
			return err
		}
		return printJSON(orders)

	case "orders":
		orders, err := s.LoadOrders(ctx)
		if err != nil {
			return err
		}
		return printJSON(orders)

	case "profile":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		phone := fs.String("phone", "", "phone number")
		usn := fs.String("usn", "", "university seat number")
		semester := fs.Int("semester", 0, "semester, 1 to 8")
		_ = fs.Parse(args)
		var p models.Profile
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "phone":
				p.PhoneNumber = phone
			case "usn":
				p.USN = usn
			case "semester":
				p.Semester = semester
			}
		})
		saved, err := s.UpdateProfile(ctx, p)
		if err != nil {
			return err
		}
		return printJSON(saved)

	case "contact":
		if err := s.Refresh(ctx); err != nil {
			return err
		}
		env, err := s.ContactHosts()
		if err != nil {
			return err
		}
		fmt.Println(env.Mailto)
		return nil

	case "inventory":
		d, err := s.LoadInventory(ctx)
		if err != nil {
			return err
		}
		return printJSON(d)
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func printServices(services []models.Service) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCATEGORY\tHOST\tPRICE")
	for _, svc := range services {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", svc.ID, svc.Title, svc.Category, svc.HostName, svc.Price)
	}
	_ = w.Flush()
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func fatal(err error) {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		fmt.Fprintln(os.Stderr, "error:", ae.Message)
	} else {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	os.Exit(1)
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func defaultStatePath() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		return "campusgigs-state.json"
	}
	return filepath.Join(dir, ".campusgigs", "state.json")
}
