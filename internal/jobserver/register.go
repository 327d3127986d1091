package jobserver

import "github.com/modelcontextprotocol/go-sdk/mcp"

// RegisterTools registers every salary, job and resume tool on the given
// MCP server.
func RegisterTools(server *mcp.Server) {
	registerSalaryExtract(server)
	registerSalaryNormalize(server)
	registerSalaryFormat(server)

	registerJobFormat(server)
	registerJobFetch(server)
	registerJobSave(server)
	registerJobList(server)
	registerJobGet(server)
	registerJobUpdate(server)
	registerJobDelete(server)

	registerResumeFormat(server)
	registerResumeBaseGet(server)
	registerResumeBaseSave(server)
	registerResumeOptimize(server)
	registerTailoredResumeSave(server)
}

// ToolCount is the number of tools RegisterTools adds.
const ToolCount = 15
