package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	ucli "github.com/urfave/cli/v2"

	"invoicer/internal/amqp"
	"invoicer/internal/billing"
	"invoicer/internal/cli"
	"invoicer/internal/config"
	"invoicer/internal/core"
	"invoicer/internal/invoice"
	"invoicer/internal/log"
	"invoicer/internal/money"
	"invoicer/internal/services"
)

func newApp(out io.Writer) *ucli.App {
	return &ucli.App{
		Name:      "billctl",
		Usage:     "inspect and manage stored bills",
		Writer:    out,
		ErrWriter: os.Stderr,
		Flags: []ucli.Flag{
			&ucli.StringFlag{Name: "log-level", Value: "warn", Usage: "log level (debug, info, warn, error)", EnvVars: []string{"BILLCTL_LOG_LEVEL"}},
		},
		Commands: []*ucli.Command{
			{
				Name:  "list",
				Usage: "list bills in insertion order",
				Flags: []ucli.Flag{
					&ucli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "only Corporate or Event bills"},
					&ucli.BoolFlag{Name: "json", Usage: "print JSON"},
				},
				Action: withService(listBills),
			},
			{
				Name:      "show",
				Usage:     "print one bill as JSON",
				ArgsUsage: "ID",
				Action:    withService(showBill),
			},
			{
				Name:      "delete",
				Usage:     "delete a bill",
				ArgsUsage: "ID",
				Action:    withService(deleteBill),
			},
			{
				Name:      "invoice",
				Usage:     "render a bill's invoice to a .pdf or .html file",
				ArgsUsage: "ID",
				Flags: []ucli.Flag{
					&ucli.StringFlag{Name: "out", Aliases: []string{"o"}, Required: true, Usage: "output file (.pdf or .html)"},
				},
				Action: withService(renderInvoice),
			},
			{
				Name:      "words",
				Usage:     "spell an amount the way invoices do",
				ArgsUsage: "AMOUNT",
				Action: func(c *ucli.Context) error {
					amount, err := parseAmountArg(c)
					if err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, money.AmountToWords(amount))
					return nil
				},
			},
			{
				Name:      "format",
				Usage:     "format an amount as Taka",
				ArgsUsage: "AMOUNT",
				Action: func(c *ucli.Context) error {
					amount, err := parseAmountArg(c)
					if err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, money.FormatCurrency(amount))
					return nil
				},
			},
			{
				Name:   "events",
				Usage:  "print bill events from the configured AMQP queue until interrupted",
				Action: watchEvents,
			},
		},
	}
}

type env struct {
	cfg    *config.Config
	logger *log.Logger
	svc    *services.BillService
}

// withService opens the configured store for the duration of one command.
func withService(fn func(*ucli.Context, *env) error) ucli.ActionFunc {
	return func(c *ucli.Context) error {
		cfg, logger, err := setup(c)
		if err != nil {
			return err
		}
		store, closeStore, err := cli.OpenStore(c.Context, cfg, logger)
		if err != nil {
			return err
		}
		defer closeStore()
		return fn(c, &env{cfg: cfg, logger: logger, svc: newService(store, logger)})
	}
}

func setup(c *ucli.Context) (*config.Config, *log.Logger, error) {
	logger := log.New(log.Config{
		Level:     log.ParseLevel(c.String("log-level")),
		Component: log.ComponentCLI,
		Output:    c.App.ErrWriter,
	})
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func newService(store *billing.Store, logger *log.Logger) *services.BillService {
	return services.NewBillService(store, services.WithLogger(logger))
}

func requireID(c *ucli.Context) (string, error) {
	id := strings.TrimSpace(c.Args().First())
	if id == "" {
		return "", errors.New("missing bill ID")
	}
	return id, nil
}

func listBills(c *ucli.Context, e *env) error {
	var t core.BillType
	if v := c.String("type"); v != "" {
		parsed, err := core.ParseBillType(v)
		if err != nil {
			return fmt.Errorf("--type %q: %w", v, err)
		}
		t = parsed
	}
	bills := e.svc.List(t)

	if c.Bool("json") {
		return writeJSON(c.App.Writer, bills)
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INVOICE\tTYPE\tDATE\tCLIENT\tITEMS\tTOTAL")
	for _, b := range bills {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			b.InvoiceNumber(), b.Type, b.Date, b.ClientName, len(b.Items),
			money.FormatCurrency(b.GrandTotal.Float()))
	}
	return tw.Flush()
}

func showBill(c *ucli.Context, e *env) error {
	id, err := requireID(c)
	if err != nil {
		return err
	}
	bill, err := e.svc.Find(id)
	if err != nil {
		return fmt.Errorf("%s: %w", id, err)
	}
	return writeJSON(c.App.Writer, bill)
}

func deleteBill(c *ucli.Context, e *env) error {
	id, err := requireID(c)
	if err != nil {
		return err
	}
	if err := e.svc.Delete(c.Context, id); err != nil {
		return fmt.Errorf("%s: %w", id, err)
	}
	fmt.Fprintf(c.App.Writer, "deleted %s\n", id)
	return nil
}

func renderInvoice(c *ucli.Context, e *env) error {
	id, err := requireID(c)
	if err != nil {
		return err
	}
	bill, err := e.svc.Find(id)
	if err != nil {
		return fmt.Errorf("%s: %w", id, err)
	}

	out := c.String("out")
	doc := invoice.NewDocument(bill, invoice.Business{
		Name:    e.cfg.BusinessName,
		Address: e.cfg.BusinessAddress,
		Phone:   e.cfg.BusinessPhone,
	})

	var data []byte
	switch strings.ToLower(filepath.Ext(out)) {
	case ".pdf":
		data, err = invoice.RenderPDF(c.Context, doc)
	case ".html", ".htm":
		var buf bytes.Buffer
		err = invoice.RenderHTML(&buf, doc)
		data = buf.Bytes()
	default:
		return fmt.Errorf("unsupported output %q: use .pdf or .html", out)
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return fmt.Errorf("write invoice: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "wrote invoice %s to %s\n", doc.Number, out)
	return nil
}

func watchEvents(c *ucli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	if cfg.AMQPURL == "" {
		return errors.New("AMQP_URL is not set")
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger.WithComponent(log.ComponentAMQP).Slog())
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	err = client.ConsumeBillEvents(ctx, func(ev core.BillEvent) error {
		_, err := fmt.Fprintf(c.App.Writer, "%s\t%s\t%s\t%s\t%s\n",
			ev.OccurredAt.Format(time.RFC3339), ev.Type, ev.BillID, ev.BillType,
			money.FormatCurrency(ev.GrandTotal.Float()))
		return err
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func parseAmountArg(c *ucli.Context) (float64, error) {
	raw := strings.ReplaceAll(strings.TrimSpace(c.Args().First()), ",", "")
	if raw == "" {
		return 0, errors.New("missing AMOUNT")
	}
	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, fmt.Errorf("invalid amount %q", c.Args().First())
	}
	return amount, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
