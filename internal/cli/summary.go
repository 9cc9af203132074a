package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/mrlokans/grocery-share/internal/config"
	"github.com/mrlokans/grocery-share/internal/database/people"
	"github.com/mrlokans/grocery-share/internal/database/products"
	"github.com/mrlokans/grocery-share/internal/database/purchases"
	"github.com/mrlokans/grocery-share/internal/entities"
	"github.com/mrlokans/grocery-share/internal/services"
)

// SummaryCommand prints what each participant owes for a purchase.
type SummaryCommand struct {
	DatabasePath string
	PurchaseID   uint

	out io.Writer
}

func NewSummaryCommand() *SummaryCommand {
	return &SummaryCommand{out: os.Stdout}
}

func (cmd *SummaryCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)

	var purchaseID uint64
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.Uint64Var(&purchaseID, "purchase", 0, "ID of the purchase to summarize (required)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s summary [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Print the items of a purchase and what each participant owes.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s summary -purchase 12\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if purchaseID == 0 {
		fs.Usage()
		return fmt.Errorf("purchase is required")
	}
	cmd.PurchaseID = uint(purchaseID)
	return nil
}

func (cmd *SummaryCommand) Run() error {
	ctx := context.Background()

	store := openStore(cmd.DatabasePath)
	defer store.Close()

	peopleRepo := people.NewRepository(store)
	purchasesRepo := purchases.NewRepository(store)
	service := services.NewPurchaseService(purchasesRepo, products.NewRepository(store), nil)

	summary, err := service.Summary(ctx, cmd.PurchaseID)
	if err != nil {
		return fmt.Errorf("summarize purchase %d: %w", cmd.PurchaseID, err)
	}
	if summary == nil {
		return fmt.Errorf("purchase %d not found", cmd.PurchaseID)
	}

	everyone, err := peopleRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("list people: %w", err)
	}
	names := make(map[uint]string, len(everyone))
	for _, p := range everyone {
		names[p.ID] = p.Name
	}

	return printSummary(cmd.out, summary, names)
}

func printSummary(out io.Writer, summary *services.PurchaseSummary, names map[uint]string) error {
	status := "open"
	if summary.Purchase.IsCompleted {
		status = "completed"
	}
	fmt.Fprintf(out, "Purchase #%d at %s (%s, %s)\n\n",
		summary.Purchase.ID, summary.Purchase.Establishment, summary.Purchase.CreatedAt, status)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ITEM\tPRICE\tSPLIT")
	for _, item := range summary.Items {
		price := "-"
		if item.Price.Valid {
			price = item.Price.Decimal.StringFixed(2)
		}
		split := "shared"
		if item.PersonID != nil {
			split = nameOf(names, *item.PersonID)
		} else if item.SplitMode == entities.SplitAssigned {
			split = "unassigned"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", item.ProductName, price, split)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nTotal: %s\n", summary.Total.StringFixed(2))
	if summary.Split == nil {
		fmt.Fprintln(out, "No participants to split between.")
		return nil
	}

	fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PERSON\tOWN ITEMS\tSHARED\tOWES")
	for _, share := range summary.Split.Shares {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", nameOf(names, share.PersonID),
			share.Individual.StringFixed(2), share.Shared.StringFixed(2), share.Owed.StringFixed(2))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if !summary.Split.Unallocated.IsZero() {
		fmt.Fprintf(out, "\nUnallocated: %s\n", summary.Split.Unallocated.StringFixed(2))
	}
	if summary.Split.Unpriced > 0 {
		fmt.Fprintf(out, "Items without a price: %d\n", summary.Split.Unpriced)
	}
	return nil
}

func nameOf(names map[uint]string, id uint) string {
	if name, ok := names[id]; ok {
		return name
	}
	return fmt.Sprintf("#%d", id)
}
