package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"posterminal/internal/cart"
	"posterminal/internal/catalog"
	"posterminal/internal/checkout"
	"posterminal/internal/domain"
	"posterminal/internal/scanner"
)

// rawInput puts the controlling terminal into character-at-a-time mode so
// keystroke timestamps reflect actual key arrival. Line mode would hand the
// whole line over at once and every line would look like a scanner burst.
func rawInput() (restore func(), err error) {
	set := exec.Command("stty", "cbreak", "-echo")
	set.Stdin = os.Stdin
	if err := set.Run(); err != nil {
		return nil, fmt.Errorf("stty cbreak: %w", err)
	}
	return func() {
		reset := exec.Command("stty", "sane")
		reset.Stdin = os.Stdin
		_ = reset.Run()
	}, nil
}

type terminal struct {
	cache        *catalog.Cache
	cart         *cart.Cart
	orchestrator *checkout.Orchestrator
	stream       *scanner.Stream
	payments     []string

	line []rune
}

func (t *terminal) run(ctx context.Context) {
	fmt.Println(`ready. scan a barcode or type "help".`)
	t.prompt()

	in := bufio.NewReader(os.Stdin)
	for {
		r, _, err := in.ReadRune()
		if err != nil {
			fmt.Println()
			return
		}
		now := time.Now()
		switch r {
		case '\r', '\n':
			action := t.stream.Feed(scanner.KeyEvent{Key: scanner.KeyEnter, At: now}, false)
			fmt.Println()
			if action.Kind == scanner.ActionScan {
				// The burst landed in the visible line too; drop it.
				t.line = t.line[:0]
				t.handleScan(ctx, action.Code)
			} else if line := strings.TrimSpace(string(t.line)); line != "" {
				t.line = t.line[:0]
				if !t.handleCommand(ctx, line) {
					return
				}
			}
			t.prompt()
		case 0x7f, '\b':
			t.stream.Reset()
			if n := len(t.line); n > 0 {
				t.line = t.line[:n-1]
				fmt.Print("\b \b")
			}
		default:
			t.stream.Feed(scanner.KeyEvent{Key: string(r), At: now}, false)
			t.line = append(t.line, r)
			fmt.Print(string(r))
		}
	}
}

func (t *terminal) prompt() {
	items := 0
	for _, line := range t.cart.Lines() {
		items += line.Quantity
	}
	fmt.Printf("[%d items, total %s] > ", items, cents(t.cart.TotalCents()))
}

func (t *terminal) handleScan(ctx context.Context, code string) {
	t.addBySKU(ctx, code, 1)
}

// handleCommand executes one typed line. It returns false when the session
// should end.
func (t *terminal) handleCommand(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	switch cmd {
	case "help":
		fmt.Print(`commands:
  add <sku> [qty]   add a variant to the cart
  rm <sku>          remove a line from the cart
  cart              show staged lines
  find <text>       search the local catalog
  checkout [method] submit the order (methods: ` + strings.Join(t.payments, ", ") + `)
  clear             empty the cart
  refresh           force a catalog refresh
  quit              exit
`)
	case "add":
		if len(args) == 0 {
			fmt.Println("usage: add <sku> [qty]")
			break
		}
		qty := 1
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n <= 0 {
				fmt.Println("quantity must be a positive number")
				break
			}
			qty = n
		}
		t.addBySKU(ctx, args[0], qty)
	case "rm":
		if len(args) == 0 {
			fmt.Println("usage: rm <sku>")
			break
		}
		t.removeBySKU(args[0])
	case "cart":
		t.printCart()
	case "find":
		t.find(strings.Join(args, " "))
	case "checkout":
		method := ""
		if len(args) > 0 {
			method = args[0]
		} else if len(t.payments) > 0 {
			method = t.payments[0]
		}
		t.checkout(ctx, method)
	case "clear":
		t.cart.Clear()
		fmt.Println("cart cleared")
	case "refresh":
		if err := t.cache.Refresh(ctx); err != nil {
			fmt.Printf("refresh failed: %v\n", err)
		} else {
			fmt.Printf("catalog: %d products\n", len(t.cache.Snapshot().Products))
		}
	case "quit", "exit":
		return false
	default:
		fmt.Printf("unknown command %q, try \"help\"\n", cmd)
	}
	return true
}

func (t *terminal) addBySKU(ctx context.Context, sku string, qty int) {
	lookupCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	variant, product, err := t.cache.LookupBySKU(lookupCtx, sku)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			fmt.Printf("no product for code %q\n", sku)
		} else {
			fmt.Printf("lookup failed: %v\n", err)
		}
		return
	}
	if err := t.cart.Add(*variant, *product, qty); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("+ %dx %s (%s) %s\n", qty, product.Name, variant.SKU, cents(variant.UnitPriceCents(*product)))
}

func (t *terminal) removeBySKU(sku string) {
	for _, line := range t.cart.Lines() {
		if line.SKU == sku {
			t.cart.Remove(line.VariantID)
			fmt.Printf("- %s\n", sku)
			return
		}
	}
	fmt.Printf("%s is not in the cart\n", sku)
}

func (t *terminal) printCart() {
	lines := t.cart.Lines()
	if len(lines) == 0 {
		fmt.Println("cart is empty")
		return
	}
	for _, line := range lines {
		fmt.Printf("  %dx %-30s %-12s %s\n",
			line.Quantity, line.DisplayName, line.SKU, cents(line.LineTotalCents()))
	}
	fmt.Printf("  total %s\n", cents(t.cart.TotalCents()))
}

func (t *terminal) find(term string) {
	if term == "" {
		fmt.Println("usage: find <text>")
		return
	}
	needle := strings.ToLower(term)
	matches := 0
	for _, p := range t.cache.Snapshot().Products {
		if !strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Slug), needle) {
			continue
		}
		for _, v := range p.Variants {
			fmt.Printf("  %-30s %-12s %s  stock %d\n",
				p.Name, v.SKU, cents(v.UnitPriceCents(p)), v.StockQuantity)
		}
		matches++
	}
	if matches == 0 {
		fmt.Println("no matches")
	}
}

func (t *terminal) checkout(ctx context.Context, method string) {
	submitCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	order, err := t.orchestrator.Submit(submitCtx, method)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			fmt.Println("cart is empty")
		case errors.Is(err, checkout.ErrPaymentMethod):
			fmt.Printf("pick a payment method: %s\n", strings.Join(t.payments, ", "))
		case errors.Is(err, checkout.ErrSubmissionInFlight):
			fmt.Println("a submission is already in flight")
		}
		// Backend failures were already surfaced through the notifier.
		return
	}
	fmt.Printf("order %s placed, total %s\n", order.ID, cents(order.TotalCents))
}

func cents(v int64) string {
	return fmt.Sprintf("$%d.%02d", v/100, v%100)
}
