// Command gen writes a sample document set for trying out xmlq:
//
//	go run ./testdata/gen -dir testdata/orders -n 12
//	xmlq "SELECT FILE_NAME, id, total FROM testdata/orders WHERE status = 'active' ORDER BY total DESC"
package main

import (
	"encoding/json"
	"encoding/xml"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/linkedin/goavro/v2"
	parquet "github.com/parquet-go/parquet-go"
)

type Customer struct {
	Name string `xml:"name" json:"name" parquet:"name"`
	City string `xml:"city" json:"city" parquet:"city"`
}

type Order struct {
	XMLName  xml.Name `xml:"order" json:"-" parquet:"-"`
	ID       int32    `xml:"id" json:"id" parquet:"id"`
	Status   string   `xml:"status" json:"status" parquet:"status"`
	Customer Customer `xml:"customer" json:"customer" parquet:"customer"`
	Total    float64  `xml:"total" json:"total" parquet:"total"`
	Items    []string `xml:"items>item" json:"item" parquet:"-"`
}

type Orders struct {
	XMLName xml.Name `xml:"orders"`
	Orders  []Order  `xml:"order"`
}

var (
	statuses = []string{"active", "closed", "pending"}
	names    = []string{"Alice", "Bob", "Charlie", "Diana", "Eve", "Frank"}
	cities   = []string{"NY", "LA", "SF"}
	products = []string{"book", "pen", "lamp", "mug"}
)

const orderSchema = `{
  "type": "record",
  "name": "order",
  "fields": [
    {"name": "id", "type": "int"},
    {"name": "status", "type": "string"},
    {"name": "customer", "type": {"type": "record", "name": "customer", "fields": [
      {"name": "name", "type": "string"},
      {"name": "city", "type": "string"}
    ]}},
    {"name": "total", "type": "double"},
    {"name": "coupon", "type": ["null", "string"], "default": null}
  ]
}`

func main() {
	dir := flag.String("dir", "testdata/orders", "output directory")
	n := flag.Int("n", 12, "number of XML documents")
	flag.Parse()

	if err := os.MkdirAll(*dir, 0o755); err != nil {
		log.Fatal(err)
	}

	for i := 0; i < *n; i++ {
		path := filepath.Join(*dir, fmt.Sprintf("orders_%03d.xml", i+1))
		if err := writeXML(path, makeOrders(i*3, 3)); err != nil {
			log.Fatal(err)
		}
	}
	if err := writeJSON(filepath.Join(*dir, "orders.json"), makeOrders(1000, 4)); err != nil {
		log.Fatal(err)
	}
	if err := writeAvro(filepath.Join(*dir, "orders.avro"), makeOrders(2000, 4)); err != nil {
		log.Fatal(err)
	}
	if err := writeParquet(filepath.Join(*dir, "orders.parquet"), makeOrders(3000, 4)); err != nil {
		log.Fatal(err)
	}
}

func makeOrders(start, count int) []Order {
	orders := make([]Order, count)
	for i := range orders {
		k := start + i
		orders[i] = Order{
			ID:     int32(k + 1),
			Status: statuses[k%len(statuses)],
			Customer: Customer{
				Name: names[k%len(names)],
				City: cities[k%len(cities)],
			},
			Total: float64((k*37)%500) + 0.5,
			Items: products[:1+k%len(products)],
		}
	}
	return orders
}

func writeXML(path string, orders []Order) error {
	data, err := xml.MarshalIndent(Orders{Orders: orders}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append([]byte(xml.Header), append(data, '\n')...), 0o644)
}

func writeJSON(path string, orders []Order) error {
	data, err := json.MarshalIndent(map[string][]Order{"order": orders}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func writeAvro(path string, orders []Order) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w, err := goavro.NewOCFWriter(goavro.OCFConfig{W: f, Schema: orderSchema})
	if err != nil {
		return err
	}
	records := make([]interface{}, len(orders))
	for i, o := range orders {
		var coupon interface{}
		if o.ID%2 == 0 {
			coupon = goavro.Union("string", fmt.Sprintf("SAVE%d", o.ID))
		}
		records[i] = map[string]interface{}{
			"id":     o.ID,
			"status": o.Status,
			"customer": map[string]interface{}{
				"name": o.Customer.Name,
				"city": o.Customer.City,
			},
			"total":  o.Total,
			"coupon": coupon,
		}
	}
	return w.Append(records)
}

func writeParquet(path string, orders []Order) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := parquet.NewGenericWriter[Order](f)
	if _, err := w.Write(orders); err != nil {
		return err
	}
	return w.Close()
}
