package persistence

import (
	"strings"
)

// ValidateSortOrder normalizes the sort order to ASC or DESC, defaulting to DESC.
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when it is whitelisted, defaultField otherwise.
func ValidateSortField(sortField string, allowedFields map[string]string, defaultField string) string {
	if column, ok := allowedFields[strings.TrimSpace(sortField)]; ok {
		return column
	}
	return defaultField
}

// ClientSortFields maps the API sort keys of clients to their columns
var ClientSortFields = map[string]string{
	"name":               "name",
	"created_at":         "created_at",
	"updated_at":         "updated_at",
	"deuda_actual":       "deuda_actual",
	"deudaActual":        "deuda_actual",
	"ultima_transaccion": "ultima_transaccion",
	"ultimaTransaccion":  "ultima_transaccion",
}
