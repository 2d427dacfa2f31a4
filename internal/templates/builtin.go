package templates

import "resume-builder/resume/model"

// Builtins is the catalog shipped with the service. The first entry is the
// default template.
func Builtins() []model.Template {
	classic := model.DefaultTemplate()

	modern := model.DefaultTemplate()
	modern.ID = "modern"
	modern.Name = "Modern"
	modern.Category = "modern"
	modern.Color = "#8B5CF6"
	modern.Gradient = "linear-gradient(135deg, #8B5CF6 0%, #6D28D9 100%)"
	modern.Layout = model.TemplateLayout{
		Type:    string(model.LayoutTwoColumn),
		Columns: model.Columns{Count: 2, Widths: []string{"32%", "68%"}, Gap: "24px"},
	}
	modern.Sections.Config = map[string]model.SectionConfig{
		model.SectionPersonal:     {Position: "sidebar"},
		model.SectionSkills:       {Position: "sidebar"},
		model.SectionCertificates: {Position: "sidebar"},
		model.SectionActivities:   {Position: "sidebar"},
	}
	modern.Typography = model.Typography{FontFamily: "Poppins", HeadingFont: "Poppins", BaseSize: 14}
	modern.Colors = model.Palette{
		Primary: "#8B5CF6", Secondary: "#6D28D9", Text: "#1F2937",
		TextLight: "#6B7280", Background: "#FFFFFF", SidebarBg: "#F5F3FF",
	}
	modern.Features = model.Features{HasPhoto: true, HasIcons: true}
	modern.PhotoConfig = model.PhotoConfig{Style: "circle", Position: "sidebar", Size: 120}

	timeline := model.DefaultTemplate()
	timeline.ID = "timeline"
	timeline.Name = "Timeline"
	timeline.Category = "professional"
	timeline.Color = "#10B981"
	timeline.Layout = model.TemplateLayout{Type: string(model.LayoutTimeline)}
	timeline.Colors.Primary = "#10B981"
	timeline.Colors.Secondary = "#059669"
	timeline.Features = model.Features{HasPhoto: false, ATSFriendly: true, MultiPage: true}

	grid := model.DefaultTemplate()
	grid.ID = "creative-grid"
	grid.Name = "Creative Grid"
	grid.Category = "creative"
	grid.Color = "#EC4899"
	grid.Layout = model.TemplateLayout{
		Type:    string(model.LayoutGrid),
		Columns: model.Columns{Count: 2, Gap: "16px"},
	}
	grid.Typography = model.Typography{FontFamily: "Montserrat", HeadingFont: "Playfair Display", BaseSize: 14}
	grid.Colors.Primary = "#EC4899"
	grid.Colors.Secondary = "#BE185D"
	grid.Features = model.Features{HasPhoto: true, HasIcons: true}
	grid.PhotoConfig = model.PhotoConfig{Style: "rounded", Position: "header", Size: 96}
	grid.IsPremium = true

	infographic := model.DefaultTemplate()
	infographic.ID = "infographic"
	infographic.Name = "Data Focused"
	infographic.Category = "creative"
	infographic.Color = "#F97316"
	infographic.Layout = model.TemplateLayout{Type: string(model.LayoutInfographic)}
	infographic.Colors.Primary = "#F97316"
	infographic.Colors.Secondary = "#C2410C"
	infographic.Features = model.Features{HasPhoto: true, HasIcons: true}

	executive := model.DefaultTemplate()
	executive.ID = "executive"
	executive.Name = "Executive"
	executive.Category = "executive"
	executive.Color = "#1F2937"
	executive.Layout = model.TemplateLayout{Type: string(model.LayoutModernBlocks)}
	executive.Sections.Visible = map[string]bool{model.SectionActivities: false}
	executive.Typography = model.Typography{FontFamily: "Georgia", HeadingFont: "Georgia", BaseSize: 15}
	executive.Colors.Primary = "#1F2937"
	executive.Colors.Secondary = "#4B5563"
	executive.Features = model.Features{HasPhoto: false, ATSFriendly: true, MultiPage: true}

	return []model.Template{classic, modern, timeline, grid, infographic, executive}
}
