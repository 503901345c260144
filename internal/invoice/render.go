package invoice

import (
	"html/template"
	"strings"
)

// RenderHTML renders the document as standalone HTML. pixelURL, when
// non-empty, embeds a 1x1 open-tracking image; export renders pass "".
func RenderHTML(doc Document, pixelURL string) (string, error) {
	var b strings.Builder
	err := docTmpl.Execute(&b, renderData{Document: doc, PixelURL: pixelURL})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

type renderData struct {
	Document
	PixelURL string
}

var docTmpl = template.Must(template.New("invoice").Funcs(template.FuncMap{
	"money": FormatMoney,
	"qty":   FormatQuantity,
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8"/>
<title>Invoice {{.Number}}</title>
<style type="text/css">
body { font-family: Helvetica, Arial, sans-serif; color: #333333; font-size: 12px; margin: 0; padding: 0; }
.container { padding: 30px; }
.invoice-title { font-size: 26px; font-weight: bold; color: #4f46e5; }
.invoice-number { font-size: 13px; color: #888888; margin-top: 4px; }
.from-name { font-size: 13px; font-weight: bold; }
.from-email { font-size: 11px; color: #888888; }
.amount-label { font-size: 10px; color: #888888; text-align: right; }
.amount-value { font-size: 22px; font-weight: bold; color: #4f46e5; text-align: right; }
.items-table { width: 100%; border-collapse: collapse; }
.items-table th { background-color: #f0f0f0; padding: 8px; text-align: left; font-weight: bold; font-size: 11px; border-bottom: 2px solid #cccccc; }
.items-table td { padding: 8px; border-bottom: 1px solid #dddddd; }
.totals-table { width: 250px; margin-left: auto; margin-top: 15px; }
.totals-table td { padding: 4px 8px; font-size: 12px; }
.totals-table .total-row td { padding-top: 10px; font-size: 15px; font-weight: bold; border-top: 2px solid #333333; }
.footer { margin-top: 40px; padding-top: 15px; border-top: 1px solid #dddddd; text-align: center; font-size: 10px; color: #aaaaaa; }
</style>
</head>
<body>
<div class="container">
<table style="width:100%;margin-bottom:25px;">
<tr>
<td style="vertical-align:top;width:60%;">
<div class="invoice-title">INVOICE</div>
<div class="invoice-number">{{.Number}}</div>
</td>
<td style="vertical-align:top;text-align:right;width:40%;">
<div class="from-name">{{.FromName}}</div>
<div class="from-email">{{.FromEmail}}</div>
</td>
</tr>
</table>
<table style="width:100%;margin-bottom:20px;">
<tr>
<td style="vertical-align:top;width:50%;">
<table>
{{if .Title}}<tr><td style="color:#666666;">Title:</td><td style="padding-left:8px;"><b>{{.Title}}</b></td></tr>{{end}}
<tr><td style="color:#666666;">Date:</td><td style="padding-left:8px;">{{.Date}}</td></tr>
{{if .DueDate}}<tr><td style="color:#666666;">Due Date:</td><td style="padding-left:8px;"><b>{{.DueDate}}</b></td></tr>{{end}}
<tr><td style="color:#666666;">Currency:</td><td style="padding-left:8px;">{{.Currency}}</td></tr>
</table>
</td>
<td style="vertical-align:top;width:50%;">
<div class="amount-label">AMOUNT DUE</div>
<div class="amount-value">{{.Currency}} {{money .Total}}</div>
</td>
</tr>
</table>
{{if .Notes}}<table style="width:100%;margin-bottom:20px;"><tr><td style="background-color:#f5f5f5;padding:10px;font-size:11px;color:#666666;">{{.Notes}}</td></tr></table>{{end}}
<table class="items-table">
<thead>
<tr>
<th>Description</th>
<th style="text-align:center;width:50px;">Qty</th>
<th style="text-align:right;width:100px;">Unit Price</th>
<th style="text-align:right;width:100px;">Total</th>
</tr>
</thead>
<tbody>
{{range .Items}}<tr>
<td>{{.Description}}</td>
<td style="text-align:center;">{{qty .Quantity}}</td>
<td style="text-align:right;">{{money .UnitPrice}}</td>
<td style="text-align:right;">{{money .Total}}</td>
</tr>
{{end}}</tbody>
</table>
<table class="totals-table">
<tr>
<td style="color:#888888;">Subtotal</td>
<td style="text-align:right;">{{.Currency}} {{money .Subtotal}}</td>
</tr>
<tr class="total-row">
<td>Total</td>
<td style="text-align:right;">{{.Currency}} {{money .Total}}</td>
</tr>
</table>
<div class="footer">Generated by NexaFlow CRM</div>
{{if .PixelURL}}<img src="{{.PixelURL}}" width="1" height="1" alt=""/>{{end}}
</div>
</body>
</html>
`))
