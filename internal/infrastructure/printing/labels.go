package printing

import "strings"

var labels = map[string]map[string]string{
	"en": {
		"invoice":     "Invoice",
		"date":        "Date",
		"status":      "Status",
		"vat":         "VAT code",
		"bill_to":     "Bill to",
		"ship_to":     "Ship to",
		"sku":         "SKU",
		"item":        "Item",
		"qty":         "Qty",
		"unit_price":  "Unit price",
		"total":       "Total",
		"subtotal":    "Subtotal",
		"shipping":    "Shipping",
		"discount":    "Discount",
		"grand_total": "Grand total",
		"pending":     "Pending",
		"confirmed":   "Confirmed",
		"processing":  "Processing",
		"shipped":     "Shipped",
		"delivered":   "Delivered",
		"cancelled":   "Cancelled",
		"refunded":    "Refunded",
	},
	"lt": {
		"invoice":     "Sąskaita faktūra",
		"date":        "Data",
		"status":      "Būsena",
		"vat":         "PVM kodas",
		"bill_to":     "Pirkėjas",
		"ship_to":     "Pristatymo adresas",
		"sku":         "Kodas",
		"item":        "Prekė",
		"qty":         "Kiekis",
		"unit_price":  "Kaina",
		"total":       "Suma",
		"subtotal":    "Tarpinė suma",
		"shipping":    "Pristatymas",
		"discount":    "Nuolaida",
		"grand_total": "Iš viso",
		"pending":     "Laukiama",
		"confirmed":   "Patvirtinta",
		"processing":  "Vykdoma",
		"shipped":     "Išsiųsta",
		"delivered":   "Pristatyta",
		"cancelled":   "Atšaukta",
		"refunded":    "Grąžinta",
	},
}

// label looks key up for locale, then its base language, then English
func label(locale, key string) string {
	for _, l := range []string{locale, baseLanguage(locale), "en"} {
		if v, ok := labels[l][key]; ok {
			return v
		}
	}
	return key
}

func baseLanguage(locale string) string {
	base, _, _ := strings.Cut(strings.ToLower(locale), "-")
	return base
}
