// Package export renders order lists as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"mfgtrack/internal/dto"
)

var Header = []string{
	"Order Number", "Product", "Customer", "Family", "Start Date", "Delivery Date",
	"Actual Delivery Date", "Status", "Amount", "Amount Received", "Amount Due",
	"Payment State", "Delayed", "Days Overdue", "Notes",
}

// WriteOrders writes the header and one record per order.
func WriteOrders(w io.Writer, orders []dto.OrderResponse) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, o := range orders {
		actual := ""
		if o.ActualDeliveryDate != nil {
			actual = *o.ActualDeliveryDate
		}
		delayed := "No"
		if o.IsDelayed {
			delayed = "Yes"
		}

		record := []string{
			o.OrderNumber,
			o.ProductName,
			o.CustomerName,
			o.FamilyName,
			o.StartDate,
			o.DeliveryDate,
			actual,
			string(o.Status),
			o.Amount.StringFixed(2),
			o.AmountReceived.StringFixed(2),
			o.AmountDue.StringFixed(2),
			string(o.PaymentState),
			delayed,
			strconv.Itoa(o.DaysOverdue),
			o.Notes,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing csv record for %s: %w", o.OrderNumber, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

// Filename is the download name for an export taken on date (YYYYMMDD).
func Filename(date string) string {
	return "orders_export_" + date + ".csv"
}
