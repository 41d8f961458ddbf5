package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicer/internal/billing"
	"invoicer/internal/core"
	"invoicer/internal/log"
	"invoicer/internal/services"
	"invoicer/internal/storage/file"
)

// seed writes two bills into a file backend rooted at a temp dir and points
// the environment at it.
func seed(t *testing.T) (dir string, corporate, event core.Bill) {
	t.Helper()
	dir = t.TempDir()
	t.Setenv("DATA_BACKEND", "file")
	t.Setenv("DATA_DIR", dir)
	t.Setenv("STORAGE_KEY", "billing_data")
	t.Setenv("AMQP_URL", "")

	blob, err := file.New(dir)
	require.NoError(t, err)
	ctx := context.Background()
	svc := services.NewBillService(billing.New(ctx, blob), services.WithLogger(log.New(log.Config{Output: &bytes.Buffer{}})))

	corporate, err = svc.CreateCorporate(ctx, services.CorporateForm{
		ClientName: "Acme Ltd", ContactPerson: "Rahim", ContactNumber: "017", Date: "2024-01-15",
		Items: []services.CorporateItem{{ServiceDate: "2024-01-10", Quantity: 2, UnitPrice: 125}},
	})
	require.NoError(t, err)
	event, err = svc.CreateEvent(ctx, services.EventForm{
		EventName: "Wedding", ContactPerson: "Karim", ContactNumber: "018", EventDate: "2024-02-20",
		Items: []services.EventItem{{PackageName: "Package-1", Description: "Mixed Platter", Quantity: 30, UnitPrice: 200}},
	})
	require.NoError(t, err)
	return dir, corporate, event
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp(&out)
	app.ErrWriter = &bytes.Buffer{}
	err := app.RunContext(context.Background(), append([]string{"billctl"}, args...))
	return out.String(), err
}

func TestListAndFilter(t *testing.T) {
	_, corporate, event := seed(t)

	out, err := run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, corporate.InvoiceNumber())
	assert.Contains(t, out, event.InvoiceNumber())
	assert.Contains(t, out, "Acme Ltd")

	out, err = run(t, "list", "--type", "event")
	require.NoError(t, err)
	assert.NotContains(t, out, "Acme Ltd")
	assert.Contains(t, out, "Wedding")

	_, err = run(t, "list", "--type", "party")
	assert.Error(t, err)
}

func TestShowAndDelete(t *testing.T) {
	_, corporate, _ := seed(t)

	out, err := run(t, "show", corporate.ID)
	require.NoError(t, err)
	assert.Contains(t, out, `"grandTotal": 250`)

	out, err = run(t, "delete", corporate.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "deleted "+corporate.ID)

	_, err = run(t, "show", corporate.ID)
	assert.ErrorIs(t, err, services.ErrBillNotFound)

	_, err = run(t, "delete", corporate.ID)
	assert.ErrorIs(t, err, services.ErrBillNotFound)
}

func TestInvoiceCommand(t *testing.T) {
	dir, _, event := seed(t)

	htmlPath := filepath.Join(dir, "invoice.html")
	_, err := run(t, "invoice", "--out", htmlPath, event.ID)
	require.NoError(t, err)
	page, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.Contains(t, string(page), "Six thousand Taka Only")

	pdfPath := filepath.Join(dir, "invoice.pdf")
	_, err = run(t, "invoice", "--out", pdfPath, event.ID)
	require.NoError(t, err)
	pdf, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	_, err = run(t, "invoice", "--out", filepath.Join(dir, "invoice.txt"), event.ID)
	assert.Error(t, err)
}

func TestWordsAndFormat(t *testing.T) {
	out, err := run(t, "words", "1,234")
	require.NoError(t, err)
	assert.Equal(t, "One thousand, two hundred thirty-four Taka Only", strings.TrimSpace(out))

	out, err = run(t, "format", "1234.5")
	require.NoError(t, err)
	assert.Equal(t, "BDT\u00a01,235", strings.TrimSpace(out))

	_, err = run(t, "words", "abc")
	assert.Error(t, err)
}
