package sample

import "time"

// Status is the lifecycle state of an order.
type Status string

const (
	// StatusPending means the order has been created but not paid.
	StatusPending Status = "pending"
	// StatusPaid means payment has cleared.
	StatusPaid    Status = "paid"
	StatusShipped Status = "shipped" // handed to the carrier
)

// Item is one order line.
type Item struct {
	SKU string `json:"sku"`
	// Qty is the unit count for this line.
	Qty int `json:"qty" jsonschema:"minimum=1,default=1"`
}

// Order is a customer purchase.
type Order struct {
	ID     string     `json:"id"`
	Status Status     `json:"status"`
	Note   *string    `json:"note" description:"free-form handling note"`
	Items  []Item     `json:"items"`
	Parent *Order     `json:"parent"`
	Placed time.Time  `json:"placed"`
	Pair   [2]float64 `json:"pair"`
}

// Shape is anything with a measurable area.
type Shape interface {
	Area() float64
}

type Circle struct {
	Radius float64 `json:"radius"`
}

func (c Circle) Area() float64 { return 3.141592653589793 * c.Radius * c.Radius }

type Rectangle struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

func (r Rectangle) Area() float64 { return r.W * r.H }

type Drawing struct {
	Shape Shape `json:"shape"`
}

type Recur struct {
	*Recur
	Name string `json:"name"`
}

type Ping struct {
	*Pong
	A string `json:"a"`
}

type Pong struct {
	*Ping
	B string `json:"b"`
}
