package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpmcp "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	productsvc "github.com/alanyang/product-catalog/internal/service/product"
)

// RegisterPrompts registers the catalog_summary prompt.
// [SRP] Prompt registration only.
func RegisterPrompts(s *mcpserver.MCPServer, productSvc *productsvc.Service) {
	s.AddPrompt(
		mcpmcp.NewPrompt("catalog_summary",
			mcpmcp.WithPromptDescription("Snapshot of the product catalog: stock levels and inactive items. Use before answering inventory questions."),
			mcpmcp.WithArgument("category",
				mcpmcp.ArgumentDescription("Restrict the summary to one category."),
			),
		),
		catalogSummaryHandler(productSvc),
	)
}

func catalogSummaryHandler(productSvc *productsvc.Service) mcpserver.PromptHandlerFunc {
	return func(ctx context.Context, req mcpmcp.GetPromptRequest) (*mcpmcp.GetPromptResult, error) {
		category := strings.TrimSpace(req.Params.Arguments["category"])

		resp, err := productSvc.GetAll.Execute(ctx, productsvc.GetAllRequest{Category: category})
		if err != nil {
			return nil, fmt.Errorf("catalog summary: %w", err)
		}

		title := "Product catalog summary"
		if category != "" {
			title = fmt.Sprintf("Product catalog summary for %q", category)
		}

		var b strings.Builder
		var inStock, inactive int
		for _, p := range resp.Products {
			if p.IsInStock() {
				inStock++
			}
			if !p.IsActive {
				inactive++
			}
		}
		fmt.Fprintf(&b, "%s\n\n%d products, %d in stock, %d inactive.\n", title, resp.Total, inStock, inactive)
		for _, p := range resp.Products {
			status := "active"
			if !p.IsActive {
				status = "inactive"
			}
			fmt.Fprintf(&b, "- %s (%s): price %s, quantity %s, %s\n", p.Name, p.ID, p.Price, p.Quantity, status)
		}

		return mcpmcp.NewGetPromptResult(
			title,
			[]mcpmcp.PromptMessage{
				mcpmcp.NewPromptMessage(
					mcpmcp.RoleUser,
					mcpmcp.TextContent{
						Type: "text",
						Text: b.String(),
					},
				),
			},
		), nil
	}
}
