// pkg/warehouse/schema.go
package warehouse

// Star schema: customer and product dimensions, sale fact. The DDL sticks
// to type names both SQLite and PostgreSQL accept.
var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS customer (
		customer_id              BIGINT PRIMARY KEY,
		name                     TEXT,
		region                   TEXT,
		join_date                TEXT,
		loyalty_points           BIGINT,
		preferred_contact_method TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS product (
		product_id     BIGINT PRIMARY KEY,
		product_name   TEXT,
		category       TEXT,
		unit_price     DOUBLE PRECISION,
		stock_quantity BIGINT,
		supplier_name  TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS sale (
		sale_id          BIGINT PRIMARY KEY,
		customer_id      BIGINT NOT NULL,
		product_id       BIGINT NOT NULL,
		store_id         BIGINT,
		campaign_id      TEXT,
		sale_date        TEXT,
		sale_amount      DOUBLE PRECISION,
		discount_percent DOUBLE PRECISION,
		payment_type     TEXT,
		FOREIGN KEY (customer_id) REFERENCES customer (customer_id),
		FOREIGN KEY (product_id)  REFERENCES product  (product_id)
	)`,
}

// deleteOrder clears the fact table before the dimensions it references
var deleteOrder = []string{"sale", "customer", "product"}
