package catalog

import (
	"fmt"
	"io"
	"strings"

	"github.com/jhoicas/litpedidos-api/internal/domain/entity"
)

// Sink destino en memoria del catálogo (memory.Store lo implementa).
type Sink interface {
	AddOrganization(org entity.Organization)
	AddLiterature(lit entity.Literature)
}

// Apply carga el catálogo en el destino.
func (c *Catalog) Apply(s Sink) {
	for _, org := range c.Organizations {
		s.AddOrganization(org)
	}
	for _, lit := range c.Literature {
		s.AddLiterature(lit)
	}
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func nullable(p *string) string {
	if p == nil {
		return "NULL"
	}
	return "'" + escapeSQL(*p) + "'"
}

// WriteSQL escribe el script de seed. Es idempotente: ON CONFLICT actualiza por id.
func (c *Catalog) WriteSQL(w io.Writer) error {
	var b strings.Builder
	b.WriteString("-- Catálogo base: organizaciones y literatura\n")
	b.WriteString("-- Generado por cmd/seed_catalog\n\n")

	if len(c.Organizations) > 0 {
		b.WriteString("-- 1. Organizaciones (de la región a los grupos)\n")
		b.WriteString("INSERT INTO organizations (id, name, type, parent_id, is_active) VALUES\n")
		for i, org := range c.Organizations {
			fmt.Fprintf(&b, "  ('%s', '%s', '%s', %s, %t)", org.ID, escapeSQL(org.Name), org.Type, nullable(org.ParentID), org.IsActive)
			if i < len(c.Organizations)-1 {
				b.WriteString(",\n")
			} else {
				b.WriteString("\n")
			}
		}
		b.WriteString("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, type = EXCLUDED.type,\n")
		b.WriteString("  parent_id = EXCLUDED.parent_id, is_active = EXCLUDED.is_active, updated_at = now();\n\n")
	}

	if len(c.Literature) > 0 {
		b.WriteString("-- 2. Literatura\n")
		b.WriteString("INSERT INTO literature (id, title, description, category, price, is_active) VALUES\n")
		for i, lit := range c.Literature {
			fmt.Fprintf(&b, "  ('%s', '%s', '%s', '%s', %s, %t)", lit.ID, escapeSQL(lit.Title), escapeSQL(lit.Description),
				escapeSQL(lit.Category), lit.Price.StringFixed(2), lit.IsActive)
			if i < len(c.Literature)-1 {
				b.WriteString(",\n")
			} else {
				b.WriteString("\n")
			}
		}
		b.WriteString("ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title, description = EXCLUDED.description,\n")
		b.WriteString("  category = EXCLUDED.category, price = EXCLUDED.price, is_active = EXCLUDED.is_active, updated_at = now();\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
