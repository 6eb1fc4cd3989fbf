package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `canopy submits conservation projects to a smart contract and reads them back.

Core concepts:
- Project: proposed with a name, description, funding target and validators. The contract assigns its numeric id.
- Validator: a registered principal with a reputation score (0-100). Only validators at or above the reputation threshold qualify.
- Milestone: a funding tranche; a project's milestone percentages total exactly 100.
- Impact metric: a measured outcome, submitted with the validators that attested to it.

Default workflow:
1) register_validator for every validator you intend to propose.
2) create_project with the proposed validators. Fails with INSUFFICIENT_VALIDATORS when too few qualify.
3) add_milestones with percentages totalling 100.
4) contribute to fund the project.
5) record_attestation per validator and metric, then validate_impact.
6) get_project to read the contract's view; list_submissions to audit calls.

Amounts and values are decimal strings ("500000.00"), never floats.

Docs:
- canopy://docs/index
- canopy://docs/units
- canopy://docs/errors
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "canopy://docs/index",
		Name:        "docs_index",
		Title:       "canopy docs index",
		Description: "Entry point: the tool surface and what to read when.",
		Content: `# canopy: Docs Index

## Tools

- ` + "`register_validator`" + ` / ` + "`list_validators`" + `: the local validator registry used to qualify validators.
- ` + "`create_project`" + `: qualifies the proposed validators, then submits the project.
- ` + "`add_milestones`" + `: percentages are checked locally before anything is sent.
- ` + "`contribute`" + `: positive amounts only.
- ` + "`record_attestation`" + ` / ` + "`validate_impact`" + `: approvals are taken from the validators stored on the project.
- ` + "`get_project`" + `: the contract's authoritative state.
- ` + "`list_submissions`" + `: every contract call this server made, newest first.

## Docs

- ` + "`canopy://docs/units`" + `: how amounts are scaled on the wire.
- ` + "`canopy://docs/errors`" + `: error codes and what to do about them.
`,
	},
	{
		URI:         "canopy://docs/units",
		Name:        "docs_units",
		Title:       "Units and rounding",
		Description: "How funding amounts, percentages and metric values are converted before submission.",
		Content: `# Units and rounding

- Funding targets are converted to minor units (cents): 500000.00 becomes 50000000.
- Milestone percentages are sent as whole integers; each must lie in 0..100 and they must total exactly 100, both as given and after rounding.
- Metric values are sent as fixed-point hundredths: 12.34 becomes 1234.
- Contributions are forwarded exactly as given.

Sub-unit remainders are rounded half to even by default (19.995 becomes 2000 cents). The server can be
configured to round half up (19.995 becomes 2000 cents) or to truncate (19.995 becomes 1999 cents).
`,
	},
	{
		URI:         "canopy://docs/errors",
		Name:        "docs_errors",
		Title:       "Error codes",
		Description: "Error codes returned by tools and how to recover.",
		Content: `# Error codes

| code | meaning |
|---|---|
| INSUFFICIENT_VALIDATORS | fewer proposed validators qualify than required |
| INVALID_MILESTONE_ALLOCATION | milestone percentages out of range or not totalling 100 |
| VALIDATOR_LOOKUP_FAILED | the registry could not be read; nothing was submitted |
| APPROVAL_COLLECTION_FAILED | attestations could not be read; nothing was submitted |
| VALIDATOR_NOT_FOUND | the validator is not registered |
| PROJECT_NOT_FOUND | the contract has no project with that id |
| GATEWAY_ERROR | the contract node rejected or failed the call |
| GATEWAY_CANCELED | the call was canceled or timed out; it may still have been applied |
| INVALID_INPUT | malformed arguments |

After GATEWAY_ERROR or GATEWAY_CANCELED, check ` + "`list_submissions`" + ` and ` + "`get_project`" + ` before retrying a state-changing call.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
