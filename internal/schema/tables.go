// Package schema declares the relational layout of the store in the shape
// ent's migrate package generates, and migrates it with ent's migrator.
package schema

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	entschema "entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	"github.com/Alijeyrad/optica_backend/internal/repo"
)

var (
	// ProductsTable holds the schema information for the "products" table.
	ProductsTable = &entschema.Table{
		Name: repo.ProductsTable,
		Columns: withTimestamps(
			idColumn(),
			&entschema.Column{Name: "code", Type: field.TypeString, Size: 20, Unique: true},
			&entschema.Column{Name: "name", Type: field.TypeString, Size: 200},
			enumColumn("category", repo.EnumStrings(repo.ProductCategories), ""),
			&entschema.Column{Name: "supplier", Type: field.TypeString, Size: 200},
			&entschema.Column{Name: "stock", Type: field.TypeInt, Default: 0},
			moneyColumn("price"),
			enumColumn("status", repo.EnumStrings(repo.ProductStatuses), string(repo.ProductStatusNormal)),
			enumColumn("type", repo.EnumStrings(repo.ProductTypes), string(repo.ProductTypeOwn)),
		),
	}

	// PatientsTable holds the schema information for the "patients" table.
	PatientsTable = &entschema.Table{
		Name: repo.PatientsTable,
		Columns: withTimestamps(
			idColumn(),
			&entschema.Column{Name: "name", Type: field.TypeString, Size: 200},
			&entschema.Column{Name: "email", Type: field.TypeString, Size: 254, Unique: true},
			&entschema.Column{Name: "phone", Type: field.TypeString, Size: 20},
			enumColumn("status", repo.EnumStrings(repo.PatientStatuses), string(repo.PatientStatusActive)),
			&entschema.Column{Name: "address", Type: field.TypeString, Size: 2147483647, Default: ""},
			&entschema.Column{Name: "notes", Type: field.TypeString, Size: 2147483647, Default: ""},
		),
	}

	// PurchaseHistoryTable holds the schema information for the "patient_purchase_histories" table.
	PurchaseHistoryTable = &entschema.Table{
		Name: repo.PurchaseHistoryTable,
		Columns: []*entschema.Column{
			idColumn(),
			fkColumn("patient_id"),
			fkColumn("product_id"),
			&entschema.Column{Name: "quantity", Type: field.TypeInt, Default: 1},
			moneyColumn("price"),
			&entschema.Column{Name: "date", Type: field.TypeTime},
			&entschema.Column{Name: "notes", Type: field.TypeString, Size: 2147483647, Default: ""},
		},
	}

	// AppointmentsTable holds the schema information for the "appointments" table.
	AppointmentsTable = &entschema.Table{
		Name: repo.AppointmentsTable,
		Columns: withTimestamps(
			idColumn(),
			fkColumn("patient_id"),
			&entschema.Column{Name: "date", Type: field.TypeString, Size: 10},
			&entschema.Column{Name: "time", Type: field.TypeString, Size: 5},
			enumColumn("type", repo.EnumStrings(repo.AppointmentTypes), ""),
			&entschema.Column{Name: "doctor", Type: field.TypeString, Size: 100},
			enumColumn("status", repo.EnumStrings(repo.AppointmentStatuses), string(repo.AppointmentStatusPending)),
			&entschema.Column{Name: "notes", Type: field.TypeString, Size: 2147483647, Default: ""},
		),
	}

	// SalesTable holds the schema information for the "sales" table.
	SalesTable = &entschema.Table{
		Name: repo.SalesTable,
		Columns: withTimestamps(
			idColumn(),
			&entschema.Column{Name: "order_number", Type: field.TypeString, Size: 20, Unique: true},
			fkColumn("patient_id"),
			enumColumn("status", repo.EnumStrings(repo.SaleStatuses), string(repo.SaleStatusNew)),
			moneyColumn("total_amount"),
			&entschema.Column{Name: "notes", Type: field.TypeString, Size: 2147483647, Default: ""},
		),
	}

	// SaleItemsTable holds the schema information for the "sale_items" table.
	SaleItemsTable = &entschema.Table{
		Name: repo.SaleItemsTable,
		Columns: []*entschema.Column{
			idColumn(),
			fkColumn("sale_id"),
			fkColumn("product_id"),
			&entschema.Column{Name: "quantity", Type: field.TypeInt, Default: 1},
			moneyColumn("unit_price"),
			moneyColumn("total_price"),
		},
	}

	// PurchasesTable holds the schema information for the "purchases" table.
	PurchasesTable = &entschema.Table{
		Name: repo.PurchasesTable,
		Columns: withTimestamps(
			idColumn(),
			&entschema.Column{Name: "purchase_number", Type: field.TypeString, Size: 20, Unique: true},
			&entschema.Column{Name: "supplier", Type: field.TypeString, Size: 200},
			moneyColumn("total_amount"),
			enumColumn("status", repo.EnumStrings(repo.PurchaseStatuses), string(repo.PurchaseStatusPending)),
			&entschema.Column{Name: "notes", Type: field.TypeString, Size: 2147483647, Default: ""},
		),
	}

	// PurchaseItemsTable holds the schema information for the "purchase_items" table.
	PurchaseItemsTable = &entschema.Table{
		Name: repo.PurchaseItemsTable,
		Columns: []*entschema.Column{
			idColumn(),
			fkColumn("purchase_id"),
			fkColumn("product_id"),
			&entschema.Column{Name: "quantity", Type: field.TypeInt, Default: 1},
			moneyColumn("unit_cost"),
			moneyColumn("total_cost"),
		},
	}

	// Tables holds all the tables in the schema, parents first.
	Tables = []*entschema.Table{
		ProductsTable,
		PatientsTable,
		PurchaseHistoryTable,
		AppointmentsTable,
		SalesTable,
		SaleItemsTable,
		PurchasesTable,
		PurchaseItemsTable,
	}
)

func init() {
	for _, t := range Tables {
		t.PrimaryKey = []*entschema.Column{columnByName(t, "id")}
	}

	PurchaseHistoryTable.ForeignKeys = []*entschema.ForeignKey{
		cascade(PurchaseHistoryTable, "patient_id", PatientsTable),
		cascade(PurchaseHistoryTable, "product_id", ProductsTable),
	}
	AppointmentsTable.ForeignKeys = []*entschema.ForeignKey{
		cascade(AppointmentsTable, "patient_id", PatientsTable),
	}
	SalesTable.ForeignKeys = []*entschema.ForeignKey{
		cascade(SalesTable, "patient_id", PatientsTable),
	}
	SaleItemsTable.ForeignKeys = []*entschema.ForeignKey{
		cascade(SaleItemsTable, "sale_id", SalesTable),
		cascade(SaleItemsTable, "product_id", ProductsTable),
	}
	PurchaseItemsTable.ForeignKeys = []*entschema.ForeignKey{
		cascade(PurchaseItemsTable, "purchase_id", PurchasesTable),
		cascade(PurchaseItemsTable, "product_id", ProductsTable),
	}

	ProductsTable.Indexes = []*entschema.Index{
		{Name: "product_category", Columns: []*entschema.Column{columnByName(ProductsTable, "category")}},
		{Name: "product_created_at", Columns: []*entschema.Column{columnByName(ProductsTable, "created_at")}},
	}
	AppointmentsTable.Indexes = []*entschema.Index{
		{Name: "appointment_date_time", Columns: []*entschema.Column{
			columnByName(AppointmentsTable, "date"),
			columnByName(AppointmentsTable, "time"),
		}},
	}
	SalesTable.Indexes = []*entschema.Index{
		{Name: "sale_created_at", Columns: []*entschema.Column{columnByName(SalesTable, "created_at")}},
	}
	PurchaseHistoryTable.Indexes = []*entschema.Index{
		{Name: "purchasehistory_patient_id_date", Columns: []*entschema.Column{
			columnByName(PurchaseHistoryTable, "patient_id"),
			columnByName(PurchaseHistoryTable, "date"),
		}},
	}
}

// Create migrates every table on drv. Indexes and columns are only added,
// never dropped.
func Create(ctx context.Context, drv dialect.Driver, opts ...entschema.MigrateOption) error {
	opts = append([]entschema.MigrateOption{entschema.WithForeignKeys(true)}, opts...)
	m, err := entschema.NewMigrate(drv, opts...)
	if err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		return fmt.Errorf("schema: create tables: %w", err)
	}
	return nil
}
