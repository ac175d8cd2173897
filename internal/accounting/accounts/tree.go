package accounts

import "sort"

// TreeNode is the nested view of an account with its children.
type TreeNode struct {
	Account
	Children []TreeNode `json:"children"`
}

// BuildTree groups a flat tenant account set into a nested structure.
// Pure function; cycles are impossible because a parent must hold a strictly
// lower level than its children, validated at creation time.
func BuildTree(flat []Account) []TreeNode {
	byParent := make(map[int64][]Account)
	var roots []Account
	for _, acc := range flat {
		if acc.ParentID == nil {
			roots = append(roots, acc)
			continue
		}
		byParent[*acc.ParentID] = append(byParent[*acc.ParentID], acc)
	}
	var build func(acc Account) TreeNode
	build = func(acc Account) TreeNode {
		node := TreeNode{Account: acc, Children: []TreeNode{}}
		children := byParent[acc.ID]
		sort.Slice(children, func(i, j int) bool { return children[i].Code < children[j].Code })
		for _, child := range children {
			node.Children = append(node.Children, build(child))
		}
		return node
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].Code < roots[j].Code })
	out := make([]TreeNode, 0, len(roots))
	for _, root := range roots {
		out = append(out, build(root))
	}
	return out
}
