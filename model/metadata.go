package model

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

type FieldType string

const FIELD_TYPE_STRING FieldType = "STRING"
const FIELD_TYPE_INTEGER FieldType = "INTEGER"
const FIELD_TYPE_DECIMAL FieldType = "DECIMAL"
const FIELD_TYPE_BOOLEAN FieldType = "BOOLEAN"
const FIELD_TYPE_DATE FieldType = "DATE"
const FIELD_TYPE_TIME FieldType = "TIME"
const FIELD_TYPE_DATE_TIME FieldType = "DATE_TIME"
const FIELD_TYPE_TEXT FieldType = "TEXT"
const FIELD_TYPE_HTML FieldType = "HTML"
const FIELD_TYPE_PASSWORD FieldType = "PASSWORD"
const FIELD_TYPE_BLOB FieldType = "BLOB"

type AppNodeType string

const APP_NODE_TYPE_APP AppNodeType = "APP"
const APP_NODE_TYPE_TABLE AppNodeType = "TABLE"
const APP_NODE_TYPE_PROCESS AppNodeType = "PROCESS"
const APP_NODE_TYPE_REPORT AppNodeType = "REPORT"

// Instance is the full metadata document served at /metaData.
type Instance struct {
	Tables            map[string]*Table         `json:"tables,omitempty"`
	Processes         map[string]*Process       `json:"processes,omitempty"`
	Reports           map[string]*Report        `json:"reports,omitempty"`
	Widgets           map[string]*Widget        `json:"widgets,omitempty"`
	Apps              map[string]*App           `json:"apps,omitempty"`
	AppTree           []*AppTreeNode            `json:"appTree,omitempty"`
	Branding          *Branding                 `json:"branding,omitempty"`
	EnvironmentValues map[string]string         `json:"environmentValues,omitempty"`
	HelpContents      map[string][]*HelpContent `json:"helpContents,omitempty"`
}

type Table struct {
	Name            string            `json:"name"`
	Label           string            `json:"label"`
	PrimaryKeyField string            `json:"primaryKeyField,omitempty"`
	IsHidden        bool              `json:"isHidden,omitempty"`
	IconName        string            `json:"iconName,omitempty"`
	Fields          map[string]*Field `json:"fields,omitempty"`
	Capabilities    []string          `json:"capabilities,omitempty"`
	HasPermission   bool              `json:"readPermission,omitempty"`
}

type Field struct {
	Name                    string    `json:"name"`
	Label                   string    `json:"label"`
	Type                    FieldType `json:"type"`
	IsRequired              bool      `json:"isRequired,omitempty"`
	IsEditable              bool      `json:"isEditable,omitempty"`
	PossibleValueSourceName string    `json:"possibleValueSourceName,omitempty"`
	DisplayFormat           string    `json:"displayFormat,omitempty"`
	DefaultValue            any       `json:"defaultValue,omitempty"`
}

type Process struct {
	Name          string          `json:"name"`
	Label         string          `json:"label"`
	TableName     string          `json:"tableName,omitempty"`
	IsHidden      bool            `json:"isHidden,omitempty"`
	IconName      string          `json:"iconName,omitempty"`
	FrontendSteps []*FrontendStep `json:"frontendSteps,omitempty"`
	HasPermission bool            `json:"hasPermission,omitempty"`
	StepFlow      string          `json:"stepFlow,omitempty"`
}

// HasStep reports whether name is one of the process's frontend steps.
func (p *Process) HasStep(name string) bool {
	return slices.ContainsFunc(p.FrontendSteps, func(s *FrontendStep) bool {
		return s.Name == name
	})
}

type FrontendStep struct {
	Name             string   `json:"name"`
	Label            string   `json:"label"`
	FormFields       []*Field `json:"formFields,omitempty"`
	ViewFields       []*Field `json:"viewFields,omitempty"`
	RecordListFields []*Field `json:"recordListFields,omitempty"`
}

type Report struct {
	Name          string `json:"name"`
	Label         string `json:"label"`
	ProcessName   string `json:"processName,omitempty"`
	HasPermission bool   `json:"hasPermission,omitempty"`
}

type Widget struct {
	Name                    string            `json:"name"`
	Label                   string            `json:"label"`
	Type                    string            `json:"type"`
	Icon                    string            `json:"icon,omitempty"`
	IsCard                  bool              `json:"isCard,omitempty"`
	MinHeight               string            `json:"minHeight,omitempty"`
	GridColumns             int               `json:"gridColumns,omitempty"`
	FooterHTML              string            `json:"footerHTML,omitempty"`
	HasPermission           bool              `json:"hasPermission,omitempty"`
	StoreDropdownSelections bool              `json:"storeDropdownSelections,omitempty"`
	Dropdowns               []*WidgetDropdown `json:"dropdowns,omitempty"`
}

type WidgetDropdown struct {
	PossibleValueSourceName string `json:"possibleValueSourceName,omitempty"`
	IsRequired              bool   `json:"isRequired"`
}

type Icon struct {
	Name  string `json:"name,omitempty"`
	Color string `json:"color,omitempty"`
	Path  string `json:"path,omitempty"`
}

type App struct {
	Name                    string         `json:"name"`
	Label                   string         `json:"label"`
	IconName                string         `json:"iconName,omitempty"`
	Widgets                 []string       `json:"widgets,omitempty"`
	Children                []*AppTreeNode `json:"children,omitempty"`
	Sections                []*AppSection  `json:"sections,omitempty"`
	SupplementalAppMetaData map[string]any `json:"supplementalAppMetaData,omitempty"`
}

// Child returns the direct child node with the given name.
func (a *App) Child(name string) (*AppTreeNode, bool) {
	for _, c := range a.Children {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

type AppSection struct {
	Name      string   `json:"name"`
	Label     string   `json:"label"`
	Icon      *Icon    `json:"icon,omitempty"`
	Tables    []string `json:"tables,omitempty"`
	Processes []string `json:"processes,omitempty"`
	Reports   []string `json:"reports,omitempty"`
}

type AppTreeNode struct {
	Type     AppNodeType    `json:"type"`
	Name     string         `json:"name"`
	Label    string         `json:"label"`
	IconName string         `json:"iconName,omitempty"`
	Children []*AppTreeNode `json:"children,omitempty"`
}

type Branding struct {
	CompanyName string             `json:"companyName,omitempty"`
	CompanyUrl  string             `json:"companyUrl,omitempty"`
	Logo        string             `json:"logo,omitempty"`
	Icon        string             `json:"icon,omitempty"`
	AppName     string             `json:"appName,omitempty"`
	Banners     map[string]*Banner `json:"banners,omitempty"`
}

type Banner struct {
	Severity         string         `json:"severity,omitempty"`
	TextColor        string         `json:"textColor,omitempty"`
	BackgroundColor  string         `json:"backgroundColor,omitempty"`
	MessageText      string         `json:"messageText,omitempty"`
	MessageHTML      string         `json:"messageHTML,omitempty"`
	AdditionalStyles map[string]any `json:"additionalStyles,omitempty"`
}

type HelpContent struct {
	Content string   `json:"content"`
	Format  string   `json:"format"`
	Roles   []string `json:"roles,omitempty"`
}

func (h *HelpContent) HasRole(role string) bool {
	return slices.Contains(h.Roles, role)
}

// Authentication keeps every key besides name and type in Data.
type Authentication struct {
	Name string
	Type string
	Data map[string]any
}

func (a *Authentication) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	a.Name = fmt.Sprint(valueOr(raw["name"], ""))
	a.Type = fmt.Sprint(valueOr(raw["type"], ""))
	a.Data = make(map[string]any)
	for k, v := range raw {
		if k != "name" && k != "type" {
			a.Data[k] = v
		}
	}
	return nil
}

func (a Authentication) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(a.Data)+2)
	for k, v := range a.Data {
		out[k] = v
	}
	out["name"] = a.Name
	out["type"] = a.Type
	return json.Marshal(out)
}

func valueOr(v any, def any) any {
	if v == nil {
		return def
	}
	return v
}

func (i *Instance) GetAppPath(appName string) (string, bool) {
	return searchAppTree(i.AppTree, appName, APP_NODE_TYPE_APP, 1, "")
}

func (i *Instance) GetTablePath(tableName string) (string, bool) {
	return searchAppTree(i.AppTree, tableName, APP_NODE_TYPE_TABLE, 1, "")
}

func (i *Instance) GetProcessPath(processName string) (string, bool) {
	return searchAppTree(i.AppTree, processName, APP_NODE_TYPE_PROCESS, 1, "")
}

func searchAppTree(nodes []*AppTreeNode, name string, nodeType AppNodeType, depth int, path string) (string, bool) {
	for _, node := range nodes {
		if node.Type == nodeType && node.Name == name {
			// top level apps with app children are not addressable themselves
			if nodeType == APP_NODE_TYPE_APP && depth == 1 && hasAppChild(node) {
				return "", false
			}
			return strings.Join([]string{path, name}, "/"), true
		}
		if node.Type == APP_NODE_TYPE_APP {
			if p, ok := searchAppTree(node.Children, name, nodeType, depth+1, path+"/"+node.Name); ok {
				return p, true
			}
		}
	}
	return "", false
}

func hasAppChild(node *AppTreeNode) bool {
	return slices.ContainsFunc(node.Children, func(c *AppTreeNode) bool {
		return c.Type == APP_NODE_TYPE_APP
	})
}
