package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/AyushMishra1006/endee-code-assistant/internal/analyzer"
	"github.com/AyushMishra1006/endee-code-assistant/internal/gitrepo"
	"github.com/AyushMishra1006/endee-code-assistant/internal/llm"
	"github.com/AyushMishra1006/endee-code-assistant/internal/rag"
	"github.com/AyushMishra1006/endee-code-assistant/internal/vectorstore"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start an MCP server exposing repository analysis tools",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	a, err := newAnalyzer()
	if err != nil {
		return err
	}
	defer a.Close()

	s := mcpserver.NewMCPServer("endee", "1.0.0", mcpserver.WithToolCapabilities(false))

	s.AddTool(analyzeRepositoryTool(), makeAnalyzeHandler(a))
	s.AddTool(askCodebaseTool(), makeAskHandler(a))
	s.AddTool(searchCodeTool(), makeSearchHandler(a))
	s.AddTool(cacheStatsTool(), makeCacheStatsHandler(a))

	return mcpserver.ServeStdio(s)
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

// --- Tool schema builders ---

var readOnlyAnnotation = mcp.ToolAnnotation{
	ReadOnlyHint:    mcp.ToBoolPtr(true),
	DestructiveHint: mcp.ToBoolPtr(false),
	IdempotentHint:  mcp.ToBoolPtr(true),
	OpenWorldHint:   mcp.ToBoolPtr(false),
}

func analyzeRepositoryTool() mcp.Tool {
	return mcp.NewTool("analyze_repository",
		mcp.WithDescription("Clone and index a public GitHub repository so it can be searched and questioned. Cached analyses are reused."),
		mcp.WithString("repo_url",
			mcp.Required(),
			mcp.Description("GitHub repository URL (https://github.com/owner/repo)"),
		),
		mcp.WithBoolean("force",
			mcp.Description("Re-analyze even when a cached snapshot exists"),
		),
	)
}

func askCodebaseTool() mcp.Tool {
	return mcp.NewTool("ask_codebase",
		mcp.WithDescription("Ask a natural-language question about the analyzed repository. Returns an answer grounded in the most similar code chunks, with source attributions."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("Question about the repository's code"),
		),
		mcp.WithNumber("k",
			mcp.Description("Maximum number of chunks to retrieve (default from config)"),
		),
	)
}

func searchCodeTool() mcp.Tool {
	return mcp.NewTool("search_code",
		mcp.WithDescription("Semantically search the analyzed repository. Returns the most similar functions and methods with file paths, line numbers, and source code."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural language or keyword query"),
		),
		mcp.WithNumber("k",
			mcp.Description("Maximum number of chunks to return (default from config)"),
		),
	)
}

func cacheStatsTool() mcp.Tool {
	return mcp.NewTool("cache_stats",
		mcp.WithDescription("List the cached repository analyses with chunk counts and sizes."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
	)
}

// --- Handler factories ---

func makeAnalyzeHandler(a *analyzer.Analyzer) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		repoURL := req.GetString("repo_url", "")
		if err := gitrepo.ValidateURL(repoURL); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		force := req.GetBool("force", false)

		stats, err := a.Analyze(ctx, repoURL, force)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
		}
		if stats.CacheHit {
			return mcp.NewToolResultText(fmt.Sprintf("Restored %d chunks from cache for %s.", stats.Chunks, repoURL)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Analyzed %s: %d files parsed (%d failed), %d chunks indexed.",
			repoURL, stats.FilesParsed, stats.ParseFailures, stats.Chunks)), nil
	}
}

// asker is the slice of the analyzer the ask tool needs.
type asker interface {
	Ask(ctx context.Context, question string, k int) (*rag.Response, error)
}

func makeAskHandler(a asker) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question := req.GetString("question", "")
		if question == "" {
			return mcp.NewToolResultError("question is required"), nil
		}
		k := req.GetInt("k", 0)

		resp, err := a.Ask(ctx, question, k)
		if err != nil {
			// Retrieval worked even though generation did not: surface the
			// matched code locations instead of a bare error.
			if errors.Is(err, llm.ErrGenerationUnavailable) && resp != nil {
				var sb strings.Builder
				fmt.Fprintf(&sb, "Answer generation failed: %v\n", err)
				sb.WriteString(formatSources(resp.Sources))
				return mcp.NewToolResultText(sb.String()), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("ask failed: %v", err)), nil
		}

		var sb strings.Builder
		sb.WriteString(resp.Answer)
		sb.WriteString(formatSources(resp.Sources))
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func formatSources(sources []rag.Source) string {
	if len(sources) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("\n\nSources:\n")
	for _, s := range sources {
		fmt.Fprintf(&sb, "- %s:%s (lines %s, similarity %.3f)\n", s.File, s.Symbol, s.Lines, s.Similarity)
	}
	return sb.String()
}

func makeSearchHandler(a *analyzer.Analyzer) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := req.GetString("query", "")
		if query == "" {
			return mcp.NewToolResultError("query is required"), nil
		}
		k := req.GetInt("k", 0)

		results, err := a.Search(ctx, query, k)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
		}
		return mcp.NewToolResultText(formatSearchResults(query, results)), nil
	}
}

func makeCacheStatsHandler(a *analyzer.Analyzer) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		stats, err := a.Cache().Stats()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("cache stats failed: %v", err)), nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "## Cached repositories (%d, %.1f MB total)\n\n", stats.Repos, float64(stats.TotalBytes)/(1<<20))
		for _, r := range stats.Records {
			fmt.Fprintf(&sb, "- **%s**: %d chunks, %.1f MB, cached %s\n",
				r.RepoURL, r.ChunkCount, float64(r.SizeBytes)/(1<<20), r.CreatedAt.Format("2006-01-02"))
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- Formatting helpers ---

func formatSearchResults(query string, results []vectorstore.Result) string {
	if len(results) == 0 {
		return fmt.Sprintf("No results found for query: %q", query)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Search results for %q (%d chunks)\n\n", query, len(results))

	for i, r := range results {
		fmt.Fprintf(&sb, "### Result %d: `%s`\n\n", i+1, r.Chunk.FilePath)
		fmt.Fprintf(&sb, "**Kind:** %s  \n**Name:** %s  \n**Lines:** %d-%d  \n**Similarity:** %.3f\n\n",
			r.Chunk.Kind, r.Chunk.SymbolName, r.Chunk.StartLine, r.Chunk.EndLine, r.Score)
		fmt.Fprintf(&sb, "```python\n%s\n```\n\n", r.Chunk.SourceCode)
	}

	return sb.String()
}
