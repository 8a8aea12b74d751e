package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	mcpmcp "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	domainproduct "github.com/alanyang/product-catalog/internal/domain/product"
	domainproject "github.com/alanyang/product-catalog/internal/domain/project"
	productsvc "github.com/alanyang/product-catalog/internal/service/product"
	projectsvc "github.com/alanyang/product-catalog/internal/service/project"
	producthandler "github.com/alanyang/product-catalog/internal/transport/product"
)

// Counter reports the number of stored products.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// RegisterTools registers all MCP tools on the server.
// [SRP] Tool registration only.
// [OCP] Add a new tool by adding a new AddTool call; server.go never changes.
func RegisterTools(
	s *mcpserver.MCPServer,
	productSvc *productsvc.Service,
	projectSvc *projectsvc.Service,
	counter Counter,
) {
	s.AddTool(mcpmcp.NewTool("list_products",
		mcpmcp.WithDescription("List products, newest first. With a category, only that category is returned; active_only further restricts to active products."),
		mcpmcp.WithString("category", mcpmcp.Description("Exact category name")),
		mcpmcp.WithBoolean("active_only", mcpmcp.Description("Only active products")),
	), listProductsHandler(productSvc))

	s.AddTool(mcpmcp.NewTool("get_product",
		mcpmcp.WithDescription("Fetch one product by id."),
		mcpmcp.WithString("id", mcpmcp.Required(), mcpmcp.Description("Product UUID")),
	), getProductHandler(productSvc))

	s.AddTool(mcpmcp.NewTool("create_product",
		mcpmcp.WithDescription("Create a product. Name and SKU must be unique."),
		mcpmcp.WithString("name", mcpmcp.Required(), mcpmcp.Description("Unique product name, at most 255 characters")),
		mcpmcp.WithNumber("price", mcpmcp.Required(), mcpmcp.Description("Price between 0 and 999999.99")),
		mcpmcp.WithNumber("quantity", mcpmcp.Required(), mcpmcp.Description("Whole number between 0 and 999999")),
		mcpmcp.WithString("description", mcpmcp.Description("Free text")),
		mcpmcp.WithString("category", mcpmcp.Description("Category name")),
		mcpmcp.WithString("sku", mcpmcp.Description("Unique stock keeping unit")),
	), createProductHandler(productSvc))

	s.AddTool(mcpmcp.NewTool("update_product",
		mcpmcp.WithDescription("Update some fields of a product. Omitted fields are unchanged; an empty description, category or sku clears it."),
		mcpmcp.WithString("id", mcpmcp.Required(), mcpmcp.Description("Product UUID")),
		mcpmcp.WithString("name", mcpmcp.Description("New unique name")),
		mcpmcp.WithNumber("price", mcpmcp.Description("New price")),
		mcpmcp.WithNumber("quantity", mcpmcp.Description("New quantity")),
		mcpmcp.WithString("description", mcpmcp.Description("New description")),
		mcpmcp.WithString("category", mcpmcp.Description("New category")),
		mcpmcp.WithString("sku", mcpmcp.Description("New SKU")),
		mcpmcp.WithBoolean("is_active", mcpmcp.Description("Active flag")),
	), updateProductHandler(productSvc))

	s.AddTool(mcpmcp.NewTool("delete_product",
		mcpmcp.WithDescription("Permanently delete a product."),
		mcpmcp.WithString("id", mcpmcp.Required(), mcpmcp.Description("Product UUID")),
	), deleteProductHandler(productSvc))

	s.AddTool(mcpmcp.NewTool("count_products",
		mcpmcp.WithDescription("Number of products in the catalog."),
	), countProductsHandler(counter))

	s.AddTool(mcpmcp.NewTool("list_projects",
		mcpmcp.WithDescription("List project velocity records, newest first."),
	), listProjectsHandler(projectSvc))

	s.AddTool(mcpmcp.NewTool("create_project",
		mcpmcp.WithDescription("Record a project's velocity for a month."),
		mcpmcp.WithString("period_month", mcpmcp.Required(), mcpmcp.Description("Month as YYYY-MM, YYYY-MM-DD or RFC 3339")),
		mcpmcp.WithNumber("velocity_pt", mcpmcp.Required(), mcpmcp.Description("Velocity in story points")),
		mcpmcp.WithString("project_name", mcpmcp.Required(), mcpmcp.Description("Project name")),
		mcpmcp.WithString("project_description", mcpmcp.Required(), mcpmcp.Description("Project description")),
	), createProjectHandler(projectSvc))
}

// ── Tool handlers ─────────────────────────────────────────────────────────

func listProductsHandler(svc *productsvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		resp, err := svc.GetAll.Execute(ctx, productsvc.GetAllRequest{
			Category:   mcpmcp.ParseString(req, "category", ""),
			ActiveOnly: mcpmcp.ParseBoolean(req, "active_only", false),
		})
		if err != nil {
			return toolError(ctx, err), nil
		}
		return jsonResult(map[string]any{"products": resp.Products, "total": resp.Total})
	}
}

func getProductHandler(svc *productsvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		resp, err := svc.GetByID.Execute(ctx, productsvc.GetByIDRequest{ID: mcpmcp.ParseString(req, "id", "")})
		if err != nil {
			return toolError(ctx, err), nil
		}
		return jsonResult(resp.Product)
	}
}

func createProductHandler(svc *productsvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		args := req.GetArguments()
		for _, key := range []string{"name", "price", "quantity"} {
			if _, ok := args[key]; !ok {
				return mcpmcp.NewToolResultText("error: " + key + " is required"), nil
			}
		}

		name, ok := args["name"].(string)
		if !ok {
			return argError("name", "a string"), nil
		}
		price, ok := numberArg(args, "price")
		if !ok {
			return argError("price", "a number"), nil
		}
		quantity, ok := numberArg(args, "quantity")
		if !ok {
			return argError("quantity", "a number"), nil
		}

		cr := productsvc.CreateRequest{Name: strings.TrimSpace(name), Price: price, Quantity: quantity}
		for _, f := range []struct {
			key string
			dst **string
		}{{"description", &cr.Description}, {"category", &cr.Category}, {"sku", &cr.SKU}} {
			if *f.dst, ok = optionalString(args, f.key); !ok {
				return argError(f.key, "a string"), nil
			}
		}

		resp, err := svc.Create.Execute(ctx, cr)
		if err != nil {
			return toolError(ctx, err), nil
		}
		return jsonResult(resp.Product)
	}
}

func updateProductHandler(svc *productsvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		args := req.GetArguments()
		ur := productsvc.UpdateRequest{ID: mcpmcp.ParseString(req, "id", "")}

		if _, ok := args["name"]; ok {
			name, ok := args["name"].(string)
			if !ok {
				return argError("name", "a string"), nil
			}
			ur.Name = domainproduct.Some(strings.TrimSpace(name))
		}
		if _, ok := args["price"]; ok {
			price, ok := numberArg(args, "price")
			if !ok {
				return argError("price", "a number"), nil
			}
			ur.Price = domainproduct.Some(price)
		}
		if _, ok := args["quantity"]; ok {
			quantity, ok := numberArg(args, "quantity")
			if !ok {
				return argError("quantity", "a number"), nil
			}
			ur.Quantity = domainproduct.Some(quantity)
		}
		if _, ok := args["is_active"]; ok {
			active, ok := args["is_active"].(bool)
			if !ok {
				return argError("is_active", "a boolean"), nil
			}
			ur.IsActive = domainproduct.Some(active)
		}
		for _, f := range []struct {
			key string
			dst *domainproduct.Optional[*string]
		}{{"description", &ur.Description}, {"category", &ur.Category}, {"sku", &ur.SKU}} {
			if _, ok := args[f.key]; !ok {
				continue
			}
			v, ok := optionalString(args, f.key)
			if !ok {
				return argError(f.key, "a string"), nil
			}
			*f.dst = domainproduct.Some(v)
		}

		resp, err := svc.Update.Execute(ctx, ur)
		if err != nil {
			return toolError(ctx, err), nil
		}
		return jsonResult(resp.Product)
	}
}

func deleteProductHandler(svc *productsvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		resp, err := svc.Delete.Execute(ctx, productsvc.DeleteRequest{ID: mcpmcp.ParseString(req, "id", "")})
		if err != nil {
			return toolError(ctx, err), nil
		}
		return jsonResult(map[string]any{"success": resp.Success, "message": resp.Message})
	}
}

func countProductsHandler(counter Counter) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, _ mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		n, err := counter.Count(ctx)
		if err != nil {
			return toolError(ctx, err), nil
		}
		return jsonResult(map[string]int64{"count": n})
	}
}

func listProjectsHandler(svc *projectsvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, _ mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		projects, err := svc.List(ctx)
		if err != nil {
			return toolError(ctx, err), nil
		}
		return jsonResult(projects)
	}
}

func createProjectHandler(svc *projectsvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		period, err := domainproject.ParsePeriodMonth(mcpmcp.ParseString(req, "period_month", ""))
		if err != nil {
			return toolError(ctx, err), nil
		}
		args := req.GetArguments()
		if _, ok := args["velocity_pt"]; !ok {
			return mcpmcp.NewToolResultText("error: velocity_pt is required"), nil
		}
		velocity, ok := numberArg(args, "velocity_pt")
		if !ok || velocity != math.Trunc(velocity) {
			return argError("velocity_pt", "an integer"), nil
		}

		p, err := svc.Create(ctx, domainproject.NewProject{
			PeriodMonth:        period,
			VelocityPt:         int(velocity),
			ProjectName:        mcpmcp.ParseString(req, "project_name", ""),
			ProjectDescription: mcpmcp.ParseString(req, "project_description", ""),
		})
		if err != nil {
			return toolError(ctx, err), nil
		}
		return jsonResult(p)
	}
}

// ── helpers ───────────────────────────────────────────────────────────────

// optionalString returns nil for an absent, null or blank argument. ok is
// false when the argument is present but not a string.
func optionalString(args map[string]any, key string) (v *string, ok bool) {
	raw, present := args[key]
	if !present || raw == nil {
		return nil, true
	}
	str, ok := raw.(string)
	if !ok {
		return nil, false
	}
	str = strings.TrimSpace(str)
	if str == "" {
		return nil, true
	}
	return &str, true
}

// numberArg reads a JSON number. null is not a number.
func numberArg(args map[string]any, key string) (float64, bool) {
	switch v := args[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func argError(key, kind string) *mcpmcp.CallToolResult {
	return mcpmcp.NewToolResultText("error: " + key + " must be " + kind)
}

// toolError renders classified failures verbatim and hides store failures.
func toolError(ctx context.Context, err error) *mcpmcp.CallToolResult {
	if errors.Is(err, domainproject.ErrInvalidProject) || producthandler.StatusFor(err) < 500 {
		return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s", err))
	}
	slog.ErrorContext(ctx, "mcp tool failed", "error", err)
	return mcpmcp.NewToolResultText("error: internal server error")
}

func jsonResult(v any) (*mcpmcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal tool result: %w", err)
	}
	return mcpmcp.NewToolResultText(string(data)), nil
}
