// Package extract implements JSON-Schema-driven structured extraction from a
// semantic tree.
package extract

import (
	"strconv"
	"strings"

	"pagesense/internal/semantic"
	"pagesense/internal/snapshoterr"
)

// Schema is a JSON Schema fragment, kept as a generic map since only a small
// leaf-type/object/array subset is interpreted.
type Schema map[string]interface{}

func (s Schema) typ() string {
	if t, ok := s["type"].(string); ok {
		return t
	}
	return "string"
}

func (s Schema) properties() map[string]Schema {
	raw, ok := s["properties"].(map[string]interface{})
	if !ok {
		return nil
	}
	out := make(map[string]Schema, len(raw))
	for k, v := range raw {
		if m, ok := v.(map[string]interface{}); ok {
			out[k] = Schema(m)
		}
	}
	return out
}

func (s Schema) items() Schema {
	raw, _ := s["items"].(map[string]interface{})
	return Schema(raw)
}

// Extract binds schema against root (optionally restricted to a subtree
// matched by a simple role/name selector) and returns the resulting value.
func Extract(root *semantic.Node, selector string, schema Schema) (interface{}, error) {
	scope := root
	if selector != "" {
		found := findBySelector(root, selector)
		if found == nil {
			return nil, snapshoterr.New(snapshoterr.KindSchemaMismatch, "selector matched no node: "+selector)
		}
		scope = found
	}
	return bind(scope, schema, "$")
}

func bind(scope *semantic.Node, schema Schema, path string) (interface{}, error) {
	switch schema.typ() {
	case "object":
		out := map[string]interface{}{}
		for name, propSchema := range schema.properties() {
			node := findProperty(scope, name)
			if node == nil {
				return nil, snapshoterr.New(snapshoterr.KindSchemaMismatch, path+"."+name)
			}
			val, err := bindLeafOrScope(node, propSchema, path+"."+name)
			if err != nil {
				return nil, err
			}
			out[name] = val
		}
		return out, nil
	case "array":
		itemSchema := schema.items()
		if table := findTable(scope); table != nil {
			if rows := extractTableArray(table, itemSchema.properties()); rows != nil {
				return rows, nil
			}
		}
		units := arrayUnits(scope)
		var out []interface{}
		for i, u := range units {
			val, err := bind(u, itemSchema, path+"["+strconv.Itoa(i)+"]")
			if err != nil {
				return nil, err
			}
			out = append(out, val)
		}
		return out, nil
	default:
		return coerceLeaf(scope, schema.typ())
	}
}

func bindLeafOrScope(node *semantic.Node, schema Schema, path string) (interface{}, error) {
	switch schema.typ() {
	case "object", "array":
		return bind(node, schema, path)
	default:
		return coerceLeaf(node, schema.typ())
	}
}

// arrayUnits picks the repeating structural unit an array schema should bind
// against when no table was found: a list's items, falling back to grouping
// scope's children by role.
func arrayUnits(scope *semantic.Node) []*semantic.Node {
	if items := findRepeatedList(scope); len(items) > 0 {
		return items
	}
	return repeatingUnits(scope)
}

// findProperty locates the best-scoring node for propName under scope. A
// plain name match on any node competes with the label+value pattern: when
// a label-like node (heading, column header, static text) matches propName,
// the value it labels - its own non-label children, or its next sibling -
// scores a bonus over the label itself, so both
// <label><span>Price: <b>19.99</b></span></label> and
// <label>Price</label><span>19.99</span> bind to the value rather than to
// the word "Price".
func findProperty(scope *semantic.Node, propName string) *semantic.Node {
	var best *semantic.Node
	var bestScore float64
	consider := func(n *semantic.Node, score float64) {
		if score > bestScore {
			bestScore, best = score, n
		}
	}

	var walk func(n *semantic.Node)
	walk = func(n *semantic.Node) {
		consider(n, matchField(propName, n))
		for i, c := range n.Children {
			if isLabelLike(c) {
				if labelScore := matchField(propName, c); labelScore > 0 {
					for _, vc := range c.Children {
						if isValueCandidate(vc, c) {
							consider(vc, labelScore+2)
						}
					}
					if i+1 < len(n.Children) && isValueCandidate(n.Children[i+1], c) {
						consider(n.Children[i+1], labelScore+2)
					}
				}
			}
			walk(c)
		}
	}
	walk(scope)
	return best
}

func isValueCandidate(n, label *semantic.Node) bool {
	return n.HasName && n.Name != "" && n.Role != label.Role
}

// matchField scores how well node's name matches propName: an exact match
// scores highest, a substring match lower, a shared-word overlap lower
// still, plus a role-shape bonus from roleHintScore.
func matchField(propName string, n *semantic.Node) float64 {
	if !n.HasName || n.Name == "" {
		return 0
	}
	propLower := strings.ToLower(propName)
	nodeLower := strings.ToLower(n.Name)

	var score float64
	switch {
	case nodeLower == propLower:
		score += 10
	case strings.Contains(nodeLower, propLower), strings.Contains(propLower, nodeLower):
		score += 5
	default:
		score += wordOverlapScore(propLower, nodeLower)
	}
	return score + roleHintScore(propLower, n)
}

// wordOverlapScore scores two names by how many of their split words share a
// substring relationship, the same heuristic column matching uses to line up
// "unit_price" against a "Price" header.
func wordOverlapScore(a, b string) float64 {
	aWords := splitNameWords(a)
	bWords := splitNameWords(b)
	var overlap int
	for _, w := range aWords {
		for _, hw := range bWords {
			if strings.Contains(hw, w) || strings.Contains(w, hw) {
				overlap++
				break
			}
		}
	}
	return float64(overlap) * 3
}

func splitNameWords(s string) []string {
	var words []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		if r == '_' || r == ' ' || r == '-' {
			flush()
			continue
		}
		cur.WriteRune(r)
	}
	flush()
	return words
}

var statusWords = []string{"delivered", "shipped", "processing", "pending", "cancelled", "active", "inactive", "completed"}

// roleHintScore corroborates a name match with the shape of the node's
// content: a dollar sign for a "price" property, digits for a "rating", a
// link role for a "url" property, and so on.
func roleHintScore(propLower string, n *semantic.Node) float64 {
	text := strings.ToLower(n.Name)
	var score float64

	if containsAny(propLower, "price", "cost", "total") && containsAny(text, "$", "€", "£") {
		score += 3
	}
	if containsAny(propLower, "link", "url", "href") && (n.Role == semantic.RoleLink || n.Href != "") {
		score += 3
	}
	if containsAny(propLower, "rating", "score", "stars") && containsDigit(text) && len(text) <= 5 {
		score += 3
	}
	if containsAny(propLower, "status", "state") {
		for _, w := range statusWords {
			if strings.Contains(text, w) {
				score += 3
				break
			}
		}
	}
	return score
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func containsDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

var labelRoles = map[semantic.AriaRole]bool{
	semantic.RoleHeading: true, semantic.RoleColumnHeader: true, semantic.RoleText: true,
}

func isLabelLike(n *semantic.Node) bool {
	return labelRoles[n.Role]
}

// findTable returns the first Table-role descendant of scope, scope itself included.
func findTable(scope *semantic.Node) *semantic.Node {
	var found *semantic.Node
	semantic.Walk(scope, func(n *semantic.Node) {
		if found == nil && n.Role == semantic.RoleTable {
			found = n
		}
	})
	return found
}

func collectColumnHeaders(table *semantic.Node) []string {
	var headers []string
	semantic.Walk(table, func(n *semantic.Node) {
		if n.Role == semantic.RoleColumnHeader {
			headers = append(headers, n.Name)
		}
	})
	return headers
}

func collectRows(table *semantic.Node) []*semantic.Node {
	headers := collectColumnHeaders(table)
	if len(headers) == 0 {
		return nil
	}
	var rows []*semantic.Node
	semantic.Walk(table, func(n *semantic.Node) {
		if n.Role != semantic.RoleRow {
			return
		}
		for _, c := range n.Children {
			if c.Role == semantic.RoleCell {
				rows = append(rows, n)
				return
			}
		}
	})
	return rows
}

func collectCells(row *semantic.Node) []*semantic.Node {
	var cells []*semantic.Node
	for _, c := range row.Children {
		if c.Role == semantic.RoleCell {
			cells = append(cells, c)
		}
	}
	return cells
}

// mapPropertiesToColumns scores each schema property name against the
// table's column headers and returns the best-matching column index per
// property, using the same name/substring/word-overlap scoring as
// matchField.
func mapPropertiesToColumns(props map[string]Schema, headers []string) map[string]int {
	mapping := map[string]int{}
	for propName := range props {
		propLower := strings.ToLower(propName)
		propWords := splitNameWords(propLower)

		bestIdx, bestScore := -1, float64(0)
		for idx, header := range headers {
			headerLower := strings.ToLower(header)
			var score float64
			switch {
			case headerLower == propLower:
				score = 10
			case strings.Contains(headerLower, propLower), strings.Contains(propLower, headerLower):
				score = 5
			default:
				headerWords := splitNameWords(headerLower)
				var overlap int
				for _, w := range propWords {
					for _, hw := range headerWords {
						if strings.Contains(hw, w) || strings.Contains(w, hw) {
							overlap++
							break
						}
					}
				}
				score = float64(overlap) * 3
			}
			if score > bestScore {
				bestScore, bestIdx = score, idx
			}
		}
		if bestIdx >= 0 {
			mapping[propName] = bestIdx
		}
	}
	return mapping
}

// extractTableArray binds an array-of-objects schema against a table by
// matching each property name against the table's column headers (see
// mapPropertiesToColumns), then reading one value per row from the matched
// column. Returns nil if the table has no headers or no property matched a
// column, so the caller can fall back to list/grouping extraction.
func extractTableArray(table *semantic.Node, props map[string]Schema) []interface{} {
	headers := collectColumnHeaders(table)
	if len(headers) == 0 {
		return nil
	}
	columnOf := mapPropertiesToColumns(props, headers)
	if len(columnOf) == 0 {
		return nil
	}

	var out []interface{}
	for _, row := range collectRows(table) {
		cells := collectCells(row)
		obj := map[string]interface{}{}
		for propName, idx := range columnOf {
			if idx >= len(cells) {
				continue
			}
			val, err := coerceLeaf(cells[idx], props[propName].typ())
			if err != nil {
				continue
			}
			obj[propName] = val
		}
		if len(obj) > 0 {
			out = append(out, obj)
		}
	}
	return out
}

// findRepeatedList returns the items of the first List with at least two
// ListItem children, anywhere under scope.
func findRepeatedList(scope *semantic.Node) []*semantic.Node {
	var items []*semantic.Node
	semantic.Walk(scope, func(n *semantic.Node) {
		if items != nil || n.Role != semantic.RoleList {
			return
		}
		var found []*semantic.Node
		for _, c := range n.Children {
			if c.Role == semantic.RoleListItem {
				found = append(found, c)
			}
		}
		if len(found) >= 2 {
			items = found
		}
	})
	return items
}

// repeatingUnits finds a repeating structural unit: children of scope sharing
// the same role, used as one array element each. This is the fallback when
// neither a table nor a list is present.
func repeatingUnits(scope *semantic.Node) []*semantic.Node {
	if scope == nil {
		return nil
	}
	byRole := map[semantic.AriaRole][]*semantic.Node{}
	for _, c := range scope.Children {
		byRole[c.Role] = append(byRole[c.Role], c)
	}
	var best []*semantic.Node
	for _, group := range byRole {
		if len(group) > len(best) {
			best = group
		}
	}
	if len(best) == 0 {
		return []*semantic.Node{scope}
	}
	return best
}

func coerceLeaf(n *semantic.Node, typ string) (interface{}, error) {
	text := n.Name
	if n.HasValue && n.Value != "" {
		text = n.Value
	}
	text = strings.TrimSpace(text)

	switch typ {
	case "string":
		return text, nil
	case "number":
		cleaned := stripCurrencyAndPercent(text)
		num := firstNumericLiteral(cleaned)
		if num == "" {
			return nil, snapshoterr.New(snapshoterr.KindSchemaMismatch, "no numeric literal in "+text)
		}
		f, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return nil, snapshoterr.Wrap(snapshoterr.KindSchemaMismatch, "parsing number", err)
		}
		return f, nil
	case "boolean":
		if n.HasState(semantic.StateChecked) || n.HasState(semantic.StateSelected) {
			return true, nil
		}
		if n.HasState(semantic.StateUnchecked) {
			return false, nil
		}
		lower := strings.ToLower(text)
		return lower == "yes" || lower == "true" || lower == "on", nil
	default:
		return nil, nil
	}
}

func stripCurrencyAndPercent(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r == '$' || r == '€' || r == '£' || r == '%' || r == ',' {
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func firstNumericLiteral(s string) string {
	var sb strings.Builder
	inNum := false
	for _, r := range s {
		isDigit := r >= '0' && r <= '9'
		isDot := r == '.' || r == '-'
		if isDigit || (isDot && inNum) {
			sb.WriteRune(r)
			inNum = true
		} else if isDigit {
			inNum = true
			sb.WriteRune(r)
		} else if inNum {
			break
		}
	}
	return sb.String()
}

func findBySelector(root *semantic.Node, selector string) *semantic.Node {
	target := strings.TrimPrefix(strings.ToLower(selector), "#")
	var found *semantic.Node
	semantic.Walk(root, func(n *semantic.Node) {
		if found != nil {
			return
		}
		if strings.EqualFold(string(n.Role), target) || (n.HasName && strings.Contains(strings.ToLower(n.Name), target)) {
			found = n
		}
	})
	return found
}
