package database

// Order queries
const (
	InsertOrderSQL = `
		INSERT INTO orders (number, user_id, total_amount, payment_method, payment_status,
			cash_tendered, change, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	InsertOrderItemSQL = `
		INSERT INTO order_items (order_id, product_id, name, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6)`

	GetOrderByNumberSQL = `
		SELECT id, number, user_id, total_amount, payment_method, payment_status,
			   cash_tendered, change, status, created_at
		FROM orders WHERE number = $1`

	GetOrderItemsSQL = `
		SELECT id, order_id, product_id, name, quantity, unit_price, subtotal
		FROM order_items WHERE order_id = $1
		ORDER BY id ASC`

	GetTodayOrdersSQL = `
		SELECT id, number, user_id, total_amount, payment_method, payment_status,
			   cash_tendered, change, status, created_at
		FROM orders
		WHERE status = 'completed' AND created_at >= $1
		ORDER BY created_at DESC`

	GetNextOrderNumberSQL = `
		SELECT COALESCE(MAX(CAST(SUBSTRING(number FROM 'ORD_[0-9]{8}_([0-9]{3})') AS INTEGER)), 0) + 1
		FROM orders
		WHERE number LIKE $1`
)

// Product catalog queries
const (
	ListProductsSQL = `
		SELECT id, name, description, price, category_id, image_url, available,
			   notes_required, created_at, updated_at
		FROM products
		ORDER BY name ASC`

	ListAvailableProductsSQL = `
		SELECT id, name, description, price, category_id, image_url, available,
			   notes_required, created_at, updated_at
		FROM products
		WHERE available = TRUE
		ORDER BY name ASC`

	ListProductsByCategorySQL = `
		SELECT id, name, description, price, category_id, image_url, available,
			   notes_required, created_at, updated_at
		FROM products
		WHERE category_id = $1 AND available = TRUE
		ORDER BY name ASC`

	GetProductSQL = `
		SELECT id, name, description, price, category_id, image_url, available,
			   notes_required, created_at, updated_at
		FROM products WHERE id = $1`

	InsertProductSQL = `
		INSERT INTO products (name, description, price, category_id, image_url, available, notes_required)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	UpdateProductSQL = `
		UPDATE products
		SET name = $1, description = $2, price = $3, category_id = $4, image_url = $5,
			available = $6, notes_required = $7, updated_at = NOW()
		WHERE id = $8`

	DeleteProductSQL = `DELETE FROM products WHERE id = $1`
)

// Category queries
const (
	ListCategoriesSQL = `
		SELECT id, name, icon, created_at
		FROM categories
		ORDER BY name ASC`

	InsertCategorySQL = `
		INSERT INTO categories (name, icon)
		VALUES ($1, $2)
		RETURNING id, created_at`

	DeleteCategorySQL = `DELETE FROM categories WHERE id = $1`
)
