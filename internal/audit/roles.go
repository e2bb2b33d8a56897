package audit

// validRoles is the WAI-ARIA 1.2 role table: widget, document structure,
// landmark, live region, window and abstract-free graphics roles. The role
// check compares the whole attribute value against this set.
var validRoles = map[string]bool{
	"alert": true, "alertdialog": true, "application": true, "article": true,
	"banner": true, "blockquote": true, "button": true, "caption": true,
	"cell": true, "checkbox": true, "code": true, "columnheader": true,
	"combobox": true, "complementary": true, "contentinfo": true,
	"definition": true, "deletion": true, "dialog": true, "directory": true,
	"document": true, "emphasis": true, "feed": true, "figure": true,
	"form": true, "generic": true, "grid": true, "gridcell": true,
	"group": true, "heading": true, "img": true, "insertion": true,
	"link": true, "list": true, "listbox": true, "listitem": true,
	"log": true, "main": true, "marquee": true, "math": true,
	"menu": true, "menubar": true, "menuitem": true, "menuitemcheckbox": true,
	"menuitemradio": true, "meter": true, "navigation": true, "none": true,
	"note": true, "option": true, "paragraph": true, "presentation": true,
	"progressbar": true, "radio": true, "radiogroup": true, "region": true,
	"row": true, "rowgroup": true, "rowheader": true, "scrollbar": true,
	"search": true, "searchbox": true, "separator": true, "slider": true,
	"spinbutton": true, "status": true, "strong": true, "subscript": true,
	"superscript": true, "switch": true, "tab": true, "table": true,
	"tablist": true, "tabpanel": true, "term": true, "textbox": true,
	"time": true, "timer": true, "toolbar": true, "tooltip": true,
	"tree": true, "treegrid": true, "treeitem": true,
}
