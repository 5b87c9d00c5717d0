package receipt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"

	"storefront/models"
)

// ErrNoOrderData is returned for an order without items.
var ErrNoOrderData = errors.New("no order data found to generate PDF")

const notAvailable = "N/A"

// AvatarFetcher downloads avatar images.
type AvatarFetcher interface {
	FetchAvatar(ctx context.Context, url string) ([]byte, error)
}

// Options tune a rendering. User is used when the order carries no user.
type Options struct {
	User     models.User
	Now      time.Time
	Avatars  AvatarFetcher
	Location *time.Location
}

// Document is a rendered receipt ready for download.
type Document struct {
	Filename string
	Bytes    []byte
}

// FormatTHB formats an amount with thousands separators and two decimals.
func FormatTHB(d decimal.Decimal) string {
	return humanize.FormatFloat("#,###.##", d.Round(2).InexactFloat64())
}

// Filename is receipt_<orderId>_<yyyy-mm-dd>.pdf; the order id falls back to
// the current unix milliseconds.
func Filename(order models.Order, now time.Time) string {
	id := order.OrderID.String()
	if id == "" {
		id = strconv.FormatInt(now.UnixMilli(), 10)
	}
	return fmt.Sprintf("receipt_%s_%s.pdf", id, now.UTC().Format("2006-01-02"))
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}

// Render builds the PDF receipt of a confirmed order. It only reads the
// order; a failure here never affects the order itself.
func Render(ctx context.Context, order models.Order, opts Options) (Document, error) {
	if len(order.Items) == 0 {
		return Document{}, ErrNoOrderData
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	if opts.Location != nil {
		now = now.In(opts.Location)
	}

	user := opts.User
	if order.User != nil {
		user = *order.User
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 22)
	pdf.Text(20, 20, "Order Receipt")

	pdf.SetFont("Arial", "", 12)
	pdf.Text(20, 35, "Issued: "+now.Format("January 2, 2006 15:04"))
	pdf.Text(20, 45, "Date: "+now.Format("1/2/2006"))

	pdf.SetFont("Arial", "", 14)
	pdf.Text(20, 60, "Order ID: "+tr(orNA(order.OrderID.String())))
	pdf.Text(20, 70, "Customer: "+tr(user.DisplayName()))

	if order.OrderID != "" {
		if qrPNG, err := qrcode.Encode("order:"+order.OrderID.String(), qrcode.Medium, 256); err == nil {
			imgOpts := gofpdf.ImageOptions{ImageType: "PNG"}
			pdf.RegisterImageOptionsReader("qr", imgOpts, bytes.NewReader(qrPNG))
			pdf.ImageOptions("qr", 155, 12, 35, 35, false, imgOpts, 0, "")
		} else {
			zap.L().Warn("receipt qr code", zap.Stringer("orderId", order.OrderID), zap.Error(err))
		}
	}

	if user.Avatar != "" && opts.Avatars != nil {
		if png, err := avatarPNG(ctx, opts.Avatars, user.Avatar); err == nil {
			imgOpts := gofpdf.ImageOptions{ImageType: "PNG"}
			pdf.RegisterImageOptionsReader("avatar", imgOpts, bytes.NewReader(png))
			pdf.ImageOptions("avatar", 130, 52, 20, 20, false, imgOpts, 0, "")
		} else {
			zap.L().Warn("receipt avatar skipped", zap.String("avatar", user.Avatar), zap.Error(err))
		}
	}

	pdf.SetLineWidth(0.5)
	pdf.Line(20, 80, 190, 80)

	// Item table
	pdf.SetY(90)
	widths := []float64{12, 50, 28, 16, 32, 32}
	header := []string{"No.", "Product", "Color", "Qty", "Unit Price", "Total"}
	aligns := []string{"C", "L", "L", "R", "R", "R"}

	pdf.SetFont("Arial", "B", 12)
	pdf.SetFillColor(41, 128, 185)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetDrawColor(200, 200, 200)
	for i, h := range header {
		pdf.CellFormat(widths[i], 9, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFillColor(245, 245, 245)
	for idx, it := range order.Items {
		row := []string{
			strconv.Itoa(idx + 1),
			tr(orNA(it.Name)),
			tr(orNA(it.Color)),
			strconv.Itoa(it.Quantity),
			FormatTHB(it.Price),
			FormatTHB(it.Total()),
		}
		fill := idx%2 == 1
		for i, cell := range row {
			pdf.CellFormat(widths[i], 8, cell, "1", 0, aligns[i], fill, 0, "")
		}
		pdf.Ln(-1)
	}

	finalY := pdf.GetY() + 10
	pdf.Line(20, finalY, 190, finalY)

	pdf.SetFont("Arial", "B", 16)
	pdf.Text(20, finalY+15, fmt.Sprintf("Total Amount: %s THB", FormatTHB(order.Total())))

	// Footer
	pdf.SetFont("Arial", "", 10)
	pdf.Text(20, finalY+35, "Thank you for your purchase")
	pdf.Text(20, finalY+45, "Generated: "+now.Format("January 2, 2006 15:04"))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return Document{}, fmt.Errorf("render receipt: %w", err)
	}

	return Document{Filename: Filename(order, now), Bytes: buf.Bytes()}, nil
}

// avatarPNG downloads an avatar and scales it to a square PNG thumbnail.
func avatarPNG(ctx context.Context, f AvatarFetcher, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	raw, err := f.FetchAvatar(ctx, url)
	if err != nil {
		return nil, err
	}
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode avatar: %w", err)
	}
	thumb := imaging.Fill(img, 96, 96, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode avatar: %w", err)
	}
	return buf.Bytes(), nil
}
