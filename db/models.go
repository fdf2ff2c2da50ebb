package db

import (
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/uptrace/bun"
)

type OrderStatus string

const (
	OrderProcessing OrderStatus = "Processing"
	OrderShipped    OrderStatus = "Shipped"
	OrderDelivered  OrderStatus = "Delivered"
	OrderCancelled  OrderStatus = "Cancelled"
)

type Customer struct {
	bun.BaseModel `bun:"table:customers,alias:c"`

	ID    int64  `bun:"customer_id,pk" json:"customer_id"`
	Name  string `bun:"name" json:"name"`
	Email string `bun:"email" json:"email"`
}

type Product struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ID             int64           `bun:"product_id,pk" json:"product_id"`
	Name           string          `bun:"name" json:"name"`
	Category       string          `bun:"category" json:"category"`
	Price          float64         `bun:"price" json:"price"`
	WarrantyMonths int             `bun:"warranty_months" json:"warranty_months"`
	Description    string          `bun:"description" json:"description"`
	Embedding      pgvector.Vector `bun:"embedding,type:vector(1536)" json:"-"`
}

type Order struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID         int64       `bun:"order_id,pk" json:"order_id"`
	CustomerID int64       `bun:"customer_id" json:"customer_id"`
	ProductID  int64       `bun:"product_id" json:"product_id"`
	OrderDate  time.Time   `bun:"order_date" json:"order_date"`
	Status     OrderStatus `bun:"status" json:"status"`
}

type Shipment struct {
	bun.BaseModel `bun:"table:shipments,alias:s"`

	ID           int64     `bun:"shipment_id,pk" json:"shipment_id"`
	OrderID      int64     `bun:"order_id" json:"order_id"`
	Carrier      string    `bun:"carrier" json:"carrier"`
	TrackingCode string    `bun:"tracking_code" json:"tracking_code"`
	UpdatedAt    time.Time `bun:"updated_at" json:"updated_at"`
}

// DocChunk is one fragment of a knowledge-base document. (doc_id,
// chunk_index) is unique; chunks of a document are contiguous and ordered
// by chunk_index.
type DocChunk struct {
	bun.BaseModel `bun:"table:doc_chunks,alias:dc"`

	ID         int64           `bun:"chunk_id,pk" json:"chunk_id"`
	DocID      string          `bun:"doc_id" json:"doc_id"`
	ChunkIndex int             `bun:"chunk_index" json:"chunk_index"`
	StartChar  int             `bun:"start_char" json:"start_char,omitempty"`
	EndChar    int             `bun:"end_char" json:"end_char,omitempty"`
	Title      string          `bun:"title" json:"title"`
	Text       string          `bun:"chunk_text" json:"chunk_text"`
	Embedding  pgvector.Vector `bun:"embedding,type:vector(1536)" json:"-"`
}

// OrderDetail is the joined row shape returned by the scoped order queries:
// order + product, plus shipment fields when a shipment exists.
type OrderDetail struct {
	OrderID        int64       `bun:"order_id" json:"order_id"`
	OrderDate      time.Time   `bun:"order_date" json:"order_date"`
	Status         OrderStatus `bun:"status" json:"status"`
	ProductID      int64       `bun:"product_id" json:"product_id"`
	ProductName    string      `bun:"product_name" json:"product_name"`
	Category       string      `bun:"category" json:"category"`
	Price          float64     `bun:"price" json:"price"`
	WarrantyMonths int         `bun:"warranty_months" json:"warranty_months"`
	Carrier        *string     `bun:"carrier" json:"carrier,omitempty"`
	TrackingCode   *string     `bun:"tracking_code" json:"tracking_code,omitempty"`
}

type DocChunkHit struct {
	ChunkID  int64   `bun:"chunk_id" json:"chunk_id"`
	DocID    string  `bun:"doc_id" json:"doc_id"`
	Title    string  `bun:"title" json:"title"`
	Snippet  string  `bun:"snippet" json:"snippet"`
	Distance float64 `bun:"distance" json:"distance"`
}

type ProductHit struct {
	ProductID      int64   `bun:"product_id" json:"product_id"`
	Name           string  `bun:"name" json:"name"`
	Category       string  `bun:"category" json:"category"`
	Price          float64 `bun:"price" json:"price"`
	WarrantyMonths int     `bun:"warranty_months" json:"warranty_months"`
	Description    string  `bun:"description" json:"description"`
	Distance       float64 `bun:"distance" json:"distance"`
}
