package tools

import "context"

func toolMemorySimilarCases(ctx context.Context, req Request, deps Deps) ToolResult {
	if deps.Memory == nil {
		return errResult("memory_error:not_configured")
	}
	family := ""
	if req.Investigation != nil {
		family = string(req.Investigation.Family())
	}
	limit := argInt(req.Args, "limit", 5)
	var tags []string
	if v, ok := req.Args["tags"].([]string); ok {
		tags = v
	}

	cases, err := deps.Memory.SimilarCases(ctx, family, tags, limit)
	if err != nil {
		return errResult("memory_error:" + err.Error())
	}
	items := make([]map[string]interface{}, 0, len(cases))
	for _, c := range cases {
		items = append(items, map[string]interface{}{
			"case_id":    c.CaseID,
			"family":     c.Family,
			"summary":    c.Summary,
			"tags":       c.Tags,
			"resolution": c.Resolution,
		})
	}
	return okResult(map[string]interface{}{"cases": items})
}

func toolMemorySkills(ctx context.Context, req Request, deps Deps) ToolResult {
	if deps.Memory == nil {
		return errResult("memory_error:not_configured")
	}
	family := ""
	if req.Investigation != nil {
		family = string(req.Investigation.Family())
	}
	limit := argInt(req.Args, "limit", 5)

	skills, err := deps.Memory.Skills(ctx, family, limit)
	if err != nil {
		return errResult("memory_error:" + err.Error())
	}
	items := make([]map[string]interface{}, 0, len(skills))
	for _, s := range skills {
		items = append(items, map[string]interface{}{
			"name":        s.Name,
			"description": s.Description,
			"applies_to":  s.AppliesTo,
		})
	}
	return okResult(map[string]interface{}{"skills": items})
}
