package catalog

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/agentregistry-dev/agentconsole/pkg/models"
	"github.com/agentregistry-dev/agentconsole/pkg/printer"
)

var (
	listSearch          string
	listCategory        string
	listDomain          string
	listSort            string
	listMode            string
	listPage            int
	listPageSize        int
	listExcludeExternal bool
	listAll             bool
	outputFormat        string
)

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog integrations",
	Long: `List one page of the catalog with the same filters as the console.

Page 1 shows every integration above the popularity threshold; later pages
hold the remainder in fixed-size chunks.`,
	RunE: runList,
}

func init() {
	ListCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Case-insensitive search over name, description, category and domain")
	ListCmd.Flags().StringVarP(&listCategory, "category", "c", "all", "Category (all, skill, data-source)")
	ListCmd.Flags().StringVar(&listDomain, "domain", "", "Exact domain match")
	ListCmd.Flags().StringVar(&listSort, "sort", "popular", "Sort order (popular, name)")
	ListCmd.Flags().StringVar(&listMode, "mode", "", "Threshold mode (studio, dev); server default when empty")
	ListCmd.Flags().IntVar(&listPage, "page", 1, "Page number")
	ListCmd.Flags().IntVarP(&listPageSize, "page-size", "p", 12, "Items per page after page 1")
	ListCmd.Flags().BoolVar(&listExcludeExternal, "exclude-external", false, "Hide integrations from external sources")
	ListCmd.Flags().BoolVarP(&listAll, "all", "a", false, "Fetch every page")
	ListCmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format (table, json)")
}

func listQuery(page int) models.CatalogQuery {
	return models.CatalogQuery{
		Search:          listSearch,
		Category:        listCategory,
		Domain:          listDomain,
		IncludeExternal: !listExcludeExternal,
		SortBy:          listSort,
		Page:            page,
		PageSize:        listPageSize,
		Mode:            listMode,
	}
}

func runList(cmd *cobra.Command, args []string) error {
	if apiClient == nil {
		return fmt.Errorf("API client not initialized")
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	pages, err := fetchPages(ctx, listPage, listAll)
	if err != nil {
		return fmt.Errorf("failed to query catalog: %w", err)
	}

	out := cmd.OutOrStdout()
	if outputFormat == "json" {
		if listAll {
			return printer.PrintJSON(out, pages)
		}
		return printer.PrintJSON(out, pages[0])
	}

	var items []models.CatalogItem
	for _, p := range pages {
		items = append(items, p.Items...)
	}
	if len(items) == 0 {
		fmt.Fprintln(out, "No integrations match the current filters")
		return nil
	}

	printCatalogTable(out, items)

	meta := pages[len(pages)-1].Metadata
	if listAll {
		fmt.Fprintln(out, printer.Muted(fmt.Sprintf("\nShowing all %d integrations.", meta.TotalItems)))
	} else {
		fmt.Fprintln(out, printer.Muted(fmt.Sprintf("\nPage %d of %d, %d integrations in total (page 1 threshold: %d stars).",
			meta.Page, meta.TotalPages, meta.TotalItems, meta.MinStars)))
	}
	return nil
}

func fetchPages(ctx context.Context, start int, all bool) ([]*models.CatalogPage, error) {
	if !all {
		page, err := apiClient.QueryCatalog(ctx, listQuery(start))
		if err != nil {
			return nil, err
		}
		return []*models.CatalogPage{page}, nil
	}

	var pages []*models.CatalogPage
	for n := 1; ; n++ {
		page, err := apiClient.QueryCatalog(ctx, listQuery(n))
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
		if len(page.Items) == 0 || n >= page.Metadata.TotalPages {
			return pages, nil
		}
	}
}

func printCatalogTable(out io.Writer, items []models.CatalogItem) {
	t := printer.NewTablePrinter(out)
	t.SetHeaders("Key", "Name", "Category", "Domain", "Stars", "Origin", "Description")

	for _, item := range items {
		name := item.Name
		if item.Favorited {
			name += " *"
		}
		t.AddRow(
			printer.TruncateString(item.Key, 30),
			printer.TruncateString(name, 30),
			string(item.UnifiedCategory),
			item.Domain,
			strconv.Itoa(item.TotalStars),
			string(item.DataOrigin),
			printer.TruncateString(item.Description, 50),
		)
	}

	if err := t.Render(); err != nil {
		printer.PrintError(fmt.Sprintf("failed to render table: %v", err))
	}
}
