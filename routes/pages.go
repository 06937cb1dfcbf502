package routes

// Pages of the inventory client.
const (
	PageLogin               Page = "login"
	PageColors              Page = "colors"
	PageCustomers           Page = "customers"
	PageProducts            Page = "products"
	PageProductVariants     Page = "product-variants"
	PageSizes               Page = "sizes"
	PageStockItems          Page = "stock-items"
	PageStockMovements      Page = "stock-movements"
	PageInvoices            Page = "invoices"
	PageReports             Page = "reports"
	PageHome                Page = "home"
	PageAddStock            Page = "add-stock"
	PagePackingSlip         Page = "packing-slip"
	PageSuppliers           Page = "suppliers"
	PageDatabaseBackup      Page = "database-backup"
	PageAuditLogs           Page = "audit-logs"
	PagePackingSlipEditable Page = "packing-slip-editable"
	PageStockBySupplier     Page = "stock-by-supplier"
)

// LoginPath is where the client sends the user when the session cannot be
// recovered.
const LoginPath = "/login"

var defaultEntries = []Entry{
	{LoginPath, PageLogin},
	{"/colors", PageColors},
	{"/customers", PageCustomers},
	{"/products", PageProducts},
	{"/product-variants", PageProductVariants},
	{"/sizes", PageSizes},
	{"/stock-items", PageStockItems},
	{"/stock-movements", PageStockMovements},
	{"/invoices", PageInvoices},
	{"/reports", PageReports},
	{"/home", PageHome},
	{"/addstock", PageAddStock},
	{"/packingslip", PagePackingSlip},
	{"/suppliers", PageSuppliers},
	{"/databasebackup", PageDatabaseBackup},
	{"/auditlogs", PageAuditLogs},
	{"/packingslipeditable", PagePackingSlipEditable},
	{"/stockbysuppliers", PageStockBySupplier},
}

// Default returns a fresh table with every page of the inventory client.
func Default() *Table {
	return New(defaultEntries...)
}
