package car

// Car is a single catalogue entry as exposed to clients and persisted by a Store.
type Car struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Brand       string  `json:"brand"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"imageUrl"`
}

// Draft carries every Car field except the server-assigned identifier.
type Draft struct {
	Name        string
	Description string
	Brand       string
	Price       float64
	ImageURL    string
}

// WithID materialises the draft as a Car carrying id.
func (d Draft) WithID(id string) Car {
	return Car{
		ID:          id,
		Name:        d.Name,
		Description: d.Description,
		Brand:       d.Brand,
		Price:       d.Price,
		ImageURL:    d.ImageURL,
	}
}

// Draft strips the identifier.
func (c Car) Draft() Draft {
	return Draft{
		Name:        c.Name,
		Description: c.Description,
		Brand:       c.Brand,
		Price:       c.Price,
		ImageURL:    c.ImageURL,
	}
}

// Index returns the position of the first car whose ID equals id, or -1.
func Index(cars []Car, id string) int {
	for i, item := range cars {
		if item.ID == id {
			return i
		}
	}
	return -1
}
