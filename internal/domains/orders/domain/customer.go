package domain

// Customer is the party placing orders. Customers are owned by another
// system; this service only reads them through order references.
type Customer struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string
	Address   string
}
