// Package action 描述窗口的菜单与工具栏
// 这些描述只是声明，由具体的 UI 宿主渲染；回调在 UI 线程中以窗口为参数调用
package action

// Callback 动作被触发时调用，window 为触发动作的执行窗口
type Callback func(window any)

// Item 菜单项：*Action、*Menu 或 Separator
type Item interface {
	isItem()
}

// Action 可触发的动作
type Action struct {
	ID        string
	Text      string
	Icon      any
	Tooltip   string
	Shortcut  string
	Checkable bool
	Checked   bool
	Callback  Callback
}

// Trigger 调用回调，可勾选的动作先切换勾选状态
func (a *Action) Trigger(window any) {
	if a.Checkable {
		a.Checked = !a.Checked
	}
	if a.Callback != nil {
		a.Callback(window)
	}
}

type separator struct{}

// Separator 分隔线
var Separator Item = separator{}

// Menu 菜单，可嵌套
type Menu struct {
	Title string
	Items []Item
}

// Toolbar 工具栏
type Toolbar struct {
	Title   string
	Actions []Item
}

func (*Action) isItem() {}
func (*Menu) isItem()   {}
func (separator) isItem() {}

// IsSeparator 判断是否为分隔线
func IsSeparator(item Item) bool {
	_, ok := item.(separator)
	return ok
}

// Walk 深度优先遍历菜单中的所有动作，fn 返回 false 时停止
func (m *Menu) Walk(fn func(a *Action) bool) bool {
	return walk(m.Items, fn)
}

// Walk 遍历工具栏中的所有动作
func (t *Toolbar) Walk(fn func(a *Action) bool) bool {
	return walk(t.Actions, fn)
}

func walk(items []Item, fn func(a *Action) bool) bool {
	for _, item := range items {
		switch it := item.(type) {
		case *Action:
			if !fn(it) {
				return false
			}
		case *Menu:
			if !it.Walk(fn) {
				return false
			}
		}
	}
	return true
}

// FindAction 在工具栏与菜单中按 ID 查找动作
func FindAction(id string, toolbar *Toolbar, menus []*Menu) (*Action, bool) {
	var found *Action
	match := func(a *Action) bool {
		if a.ID == id {
			found = a
			return false
		}
		return true
	}
	if toolbar != nil && !toolbar.Walk(match) {
		return found, true
	}
	for _, m := range menus {
		if !m.Walk(match) {
			return found, true
		}
	}
	return nil, false
}
