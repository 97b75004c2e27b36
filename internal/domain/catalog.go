package domain

// Product — товар каталога. Цена в целых рупиях.
type Product struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Image    string `json:"image"`
	Category string `json:"category"`
}

// ProductPatch — частичное обновление товара; nil-поля не меняются.
type ProductPatch struct {
	Name     *string `json:"name,omitempty"`
	Price    *int64  `json:"price,omitempty"`
	Image    *string `json:"image,omitempty"`
	Category *string `json:"category,omitempty"`
}

// Apply применяет заданные поля патча к товару.
func (p ProductPatch) Apply(product Product) Product {
	if p.Name != nil {
		product.Name = *p.Name
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.Image != nil {
		product.Image = *p.Image
	}
	if p.Category != nil {
		product.Category = *p.Category
	}
	return product
}

// Category — категория витрины с числом товаров в ней.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Count int    `json:"count"`
}

// CartLine — строка корзины: товар и количество (> 0).
type CartLine struct {
	ProductID string `json:"id"`
	Quantity  int    `json:"quantity"`
}

// PriceLookup находит товар по идентификатору; используется при подсчёте сумм и в отчётах.
type PriceLookup interface {
	Product(id string) (Product, bool)
}

// ProductIndex — снимок каталога, проиндексированный по id.
type ProductIndex map[string]Product

// NewProductIndex строит индекс по списку товаров.
func NewProductIndex(products []Product) ProductIndex {
	idx := make(ProductIndex, len(products))
	for _, p := range products {
		idx[p.ID] = p
	}
	return idx
}

// Product реализует PriceLookup.
func (idx ProductIndex) Product(id string) (Product, bool) {
	p, ok := idx[id]
	return p, ok
}

// OrderTotal считает Σ price×quantity по позициям, товар которых ещё есть в каталоге.
// Позиции удалённых товаров дают ноль.
func OrderTotal(order Order, prices PriceLookup) int64 {
	if prices == nil {
		return 0
	}
	var total int64
	for _, item := range order.Items {
		product, ok := prices.Product(item.ProductID)
		if !ok {
			continue
		}
		total += product.Price * int64(item.Quantity)
	}
	return total
}
