package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/shehrozeikram/SGCEducation-sub002/internal/form"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/listing"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/models"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/query"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/resource"
)

type column[T any] struct {
	header string
	value  func(T) string
}

type listOptions struct {
	asJSON bool
}

func (cli *commandLine) list(ctx context.Context, args []string) error {
	fs := cli.flags("list")
	search := fs.String("search", "", "Free-text search.")
	filters := pairs{}
	fs.Var(filters, "filter", "Filter as key=value; repeatable.")
	page := fs.Int("page", 1, "Page number, starting at 1.")
	limit := fs.Int("limit", 0, "Page size. Defaults to DEFAULT_PAGE_SIZE.")
	asJSON := fs.Bool("json", false, "Print JSON.")
	positional, err := parse(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		fs.Usage()
		return errHelp
	}
	d, err := lookup(positional[0])
	if err != nil {
		return err
	}
	console, err := cli.authed(ctx)
	if err != nil {
		return err
	}

	if requested, ok := filters[query.KeyInstitution]; ok && d.Scoped {
		if _, err := console.Session.ResolveInstitution(requested); err != nil {
			return err
		}
	}
	size := *limit
	if size <= 0 {
		size = cli.cfg.Listing.DefaultPageSize
	}
	q := query.New(size)
	updates := map[string]string(filters)
	if *search != "" {
		updates[query.KeySearch] = *search
	}
	q.Apply(updates)
	q.SetPage(*page - 1)

	lists := console.Lists.WithQuery(q)
	opts := listOptions{asJSON: *asJSON}
	switch d.Path {
	case "institutions":
		return showList(ctx, cli, lists.Institutions(ctx), opts, institutionColumns)
	case "departments":
		return showList(ctx, cli, lists.Departments(ctx), opts, departmentColumns)
	case "classes":
		return showList(ctx, cli, lists.Classes(ctx), opts, classColumns)
	case "sections":
		return showList(ctx, cli, lists.Sections(ctx), opts, sectionColumns)
	case "groups":
		return showList(ctx, cli, lists.Groups(ctx), opts, groupColumns)
	case "admissions":
		return showList(ctx, cli, lists.Admissions(ctx), opts, admissionColumns)
	case "users":
		return showList(ctx, cli, lists.Users(ctx), opts, userColumns)
	case "results":
		return showList(ctx, cli, lists.Results(ctx), opts, resultColumns)
	case "messages":
		return showList(ctx, cli, lists.Messages(ctx), opts, messageColumns)
	case "messages/templates":
		return showList(ctx, cli, lists.Templates(ctx), opts, templateColumns)
	case "calendar":
		return showList(ctx, cli, lists.Calendar(ctx), opts, calendarColumns)
	case "reports":
		return showList(ctx, cli, lists.Reports(ctx), opts, reportColumns)
	case "settings":
		return showList(ctx, cli, lists.Settings(ctx), opts, settingColumns)
	case "student-promotions":
		return showList(ctx, cli, lists.Promotions(ctx), opts, promotionColumns)
	}
	return fmt.Errorf("listing %s is not supported", d.Path)
}

func showList[T any](ctx context.Context, cli *commandLine, ctrl *listing.Controller[T], opts listOptions, columns []column[T]) error {
	defer ctrl.Close()
	snap, err := ctrl.Refresh(ctx)
	if err != nil {
		return err
	}
	if opts.asJSON {
		return cli.printJSON(map[string]interface{}{
			"items": snap.Items,
			"total": snap.Total,
			"page":  snap.Page + 1,
			"limit": snap.PageSize,
		})
	}

	if err := showRows(cli, snap.Items, columns); err != nil {
		return err
	}
	pages := 1
	if snap.PageSize > 0 && snap.Total > 0 {
		pages = (snap.Total + snap.PageSize - 1) / snap.PageSize
	}
	fmt.Fprintf(cli.out, "page %d of %d, %d total\n", snap.Page+1, pages, snap.Total)
	return nil
}

func (cli *commandLine) show(ctx context.Context, args []string) error {
	fs := cli.flags("show")
	asJSON := fs.Bool("json", false, "Print JSON.")
	positional, err := parse(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 2 {
		fs.Usage()
		return errHelp
	}
	d, err := lookup(positional[0])
	if err != nil {
		return err
	}
	console, err := cli.authed(ctx)
	if err != nil {
		return err
	}
	var item map[string]interface{}
	if err := console.Records.Get(ctx, d, positional[1], &item); err != nil {
		return err
	}
	if *asJSON {
		return cli.printJSON(item)
	}
	return cli.printFields(item)
}

// printFields prints one key per line, sorted. Populated references show
// their label.
func (cli *commandLine) printFields(item map[string]interface{}) error {
	keys := make([]string, 0, len(item))
	for k := range item {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k, display(item[k])})
	}
	return cli.table([]string{"FIELD", "VALUE"}, rows)
}

func display(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case map[string]interface{}:
		if id := models.ResolveID(val); id != "" {
			var r models.Ref
			raw, _ := json.Marshal(val)
			if err := json.Unmarshal(raw, &r); err == nil {
				return r.Label()
			}
			return id
		}
	}
	raw, _ := json.Marshal(v)
	return string(raw)
}

func ref(r models.Ref) string { return r.Label() }

func number(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

var (
	institutionColumns = []column[models.Institution]{
		{"ID", func(i models.Institution) string { return i.ID }},
		{"NAME", func(i models.Institution) string { return i.Name }},
		{"CODE", func(i models.Institution) string { return i.Code }},
		{"TYPE", func(i models.Institution) string { return string(i.Type) }},
		{"CITY", func(i models.Institution) string { return i.Address.City }},
		{"STATUS", func(i models.Institution) string { return i.StatusLabel() }},
	}
	departmentColumns = []column[models.Department]{
		{"ID", func(d models.Department) string { return d.ID }},
		{"NAME", func(d models.Department) string { return d.Name }},
		{"CODE", func(d models.Department) string { return d.Code }},
		{"INSTITUTION", func(d models.Department) string { return ref(d.Institution) }},
		{"STATUS", func(d models.Department) string { return models.ActiveLabel(d.IsActive) }},
	}
	classColumns = []column[models.Class]{
		{"ID", func(c models.Class) string { return c.ID }},
		{"NAME", func(c models.Class) string { return c.Name }},
		{"CODE", func(c models.Class) string { return c.Code }},
		{"INSTITUTION", func(c models.Class) string { return ref(c.Institution) }},
		{"YEAR", func(c models.Class) string { return c.AcademicYear }},
		{"STATUS", func(c models.Class) string { return models.ActiveLabel(c.IsActive) }},
	}
	sectionColumns = []column[models.Section]{
		{"ID", func(s models.Section) string { return s.ID }},
		{"NAME", func(s models.Section) string { return s.Name }},
		{"CLASS", func(s models.Section) string { return ref(s.Class) }},
		{"INSTITUTION", func(s models.Section) string { return ref(s.Institution) }},
		{"STATUS", func(s models.Section) string { return models.ActiveLabel(s.IsActive) }},
	}
	groupColumns = []column[models.Group]{
		{"ID", func(g models.Group) string { return g.ID }},
		{"NAME", func(g models.Group) string { return g.Name }},
		{"TYPE", func(g models.Group) string { return g.Type }},
		{"INSTITUTION", func(g models.Group) string { return ref(g.Institution) }},
		{"STATUS", func(g models.Group) string { return models.ActiveLabel(g.IsActive) }},
	}
	admissionColumns = []column[models.Admission]{
		{"ID", func(a models.Admission) string { return a.ID }},
		{"NAME", func(a models.Admission) string { return a.DisplayName() }},
		{"ROLL", func(a models.Admission) string { return a.RollNumber }},
		{"CLASS", func(a models.Admission) string { return ref(a.Class) }},
		{"SECTION", func(a models.Admission) string { return ref(a.Section) }},
		{"STATUS", func(a models.Admission) string { return string(a.Status) }},
	}
	userColumns = []column[models.User]{
		{"ID", func(u models.User) string { return u.ID }},
		{"NAME", func(u models.User) string { return u.Name }},
		{"EMAIL", func(u models.User) string { return u.Email }},
		{"ROLE", func(u models.User) string { return string(u.Role) }},
		{"INSTITUTION", func(u models.User) string { return ref(u.Institution) }},
		{"STATUS", func(u models.User) string { return models.ActiveLabel(u.IsActive) }},
	}
	resultColumns = []column[models.Result]{
		{"ID", func(r models.Result) string { return r.ID }},
		{"STUDENT", func(r models.Result) string { return ref(r.Student) }},
		{"SUBJECT", func(r models.Result) string { return r.Subject }},
		{"EXAM", func(r models.Result) string { return r.ExamName }},
		{"MARKS", func(r models.Result) string { return number(r.Marks.Obtained) + "/" + number(r.Marks.Total) }},
		{"GRADE", func(r models.Result) string { return r.Grade }},
		{"STATUS", func(r models.Result) string { return string(r.Status) }},
	}
	messageColumns = []column[models.Message]{
		{"ID", func(m models.Message) string { return m.ID }},
		{"SUBJECT", func(m models.Message) string { return m.Subject }},
		{"TYPE", func(m models.Message) string { return string(m.Type) }},
		{"AUDIENCE", func(m models.Message) string { return m.TargetAudience.Type }},
		{"STATUS", func(m models.Message) string { return string(m.Status) }},
	}
	templateColumns = []column[models.MessageTemplate]{
		{"ID", func(t models.MessageTemplate) string { return t.ID }},
		{"NAME", func(t models.MessageTemplate) string { return t.Name }},
		{"SUBJECT", func(t models.MessageTemplate) string { return t.Subject }},
		{"TYPE", func(t models.MessageTemplate) string { return string(t.Type) }},
	}
	calendarColumns = []column[models.CalendarEvent]{
		{"ID", func(e models.CalendarEvent) string { return e.ID }},
		{"TITLE", func(e models.CalendarEvent) string { return e.Title }},
		{"TYPE", func(e models.CalendarEvent) string { return string(e.Type) }},
		{"START", func(e models.CalendarEvent) string { return e.StartDate }},
		{"END", func(e models.CalendarEvent) string { return e.EndDate }},
	}
	reportColumns = []column[models.Report]{
		{"ID", func(r models.Report) string { return r.ID }},
		{"NAME", func(r models.Report) string { return r.Name }},
		{"TYPE", func(r models.Report) string { return string(r.Type) }},
		{"FORMAT", func(r models.Report) string { return string(r.Format) }},
		{"SCHEDULED", func(r models.Report) string { return strconv.FormatBool(r.Schedule != nil && r.Schedule.Enabled) }},
	}
	settingColumns = []column[models.Setting]{
		{"KEY", func(s models.Setting) string { return s.Key }},
		{"VALUE", func(s models.Setting) string { return display(s.Value) }},
		{"TYPE", func(s models.Setting) string { return string(s.Type) }},
		{"CATEGORY", func(s models.Setting) string { return s.Category }},
		{"EDITABLE", func(s models.Setting) string { return strconv.FormatBool(s.IsEditable) }},
	}
	promotionColumns = []column[models.Promotion]{
		{"ID", func(p models.Promotion) string { return p.ID }},
		{"OPERATION", func(p models.Promotion) string { return string(p.OperationType) }},
		{"STUDENT", func(p models.Promotion) string { return ref(p.Student) }},
		{"FROM", func(p models.Promotion) string { return ref(p.From.Class) }},
		{"TO", func(p models.Promotion) string {
			if p.To == nil {
				return ""
			}
			return ref(p.To.Class)
		}},
	}
)

func (cli *commandLine) stats(ctx context.Context, args []string) error {
	fs := cli.flags("stats")
	institution := fs.String("institution", "", "Institution id. Defaults to the session institution.")
	asJSON := fs.Bool("json", false, "Print JSON.")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	console, err := cli.authed(ctx)
	if err != nil {
		return err
	}
	scoped, err := console.Session.ResolveInstitution(*institution)
	if err != nil {
		return err
	}
	stats, err := console.Records.ResultStats(ctx, scoped)
	if err != nil {
		return err
	}
	if *asJSON {
		return cli.printJSON(stats)
	}

	fmt.Fprintf(cli.out, "results: %d (%d published, %d draft)\n", stats.TotalResults, stats.Published, stats.Draft)
	fmt.Fprintf(cli.out, "average: %s%%\npass rate: %s%%\n", number(stats.AveragePercentage), number(stats.PassRate))
	if len(stats.GradeDistribution) == 0 {
		return nil
	}
	grades := make([]string, 0, len(stats.GradeDistribution))
	for g := range stats.GradeDistribution {
		grades = append(grades, g)
	}
	sort.Strings(grades)
	rows := make([][]string, 0, len(grades))
	for _, g := range grades {
		rows = append(rows, []string{g, strconv.Itoa(stats.GradeDistribution[g])})
	}
	return cli.table([]string{"GRADE", "COUNT"}, rows)
}

// settings shows every setting by category, or changes some with -set.
func (cli *commandLine) settings(ctx context.Context, args []string) error {
	fs := cli.flags("settings")
	changes := pairs{}
	fs.Var(changes, "set", "Change a setting as key=value; repeatable.")
	asJSON := fs.Bool("json", false, "Print JSON.")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	console, err := cli.authed(ctx)
	if err != nil {
		return err
	}

	if len(changes) > 0 {
		keys := make([]string, 0, len(changes))
		for k := range changes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, key := range keys {
			f, err := settingForm(ctx, console, key)
			if err != nil {
				return err
			}
			f.Value = changes[key]
			out, err := form.Edit(resource.Settings, f.Key, f, console.FormOptions()).Submit(ctx)
			if err != nil {
				return err
			}
			cli.notify(f.Key + ": " + out.Message)
		}
		return nil
	}

	grouped, err := console.Records.SettingsByCategory(ctx)
	if err != nil {
		return err
	}
	if *asJSON {
		return cli.printJSON(grouped)
	}
	categories := make([]string, 0, len(grouped))
	for c := range grouped {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for i, c := range categories {
		if i > 0 {
			fmt.Fprintln(cli.out)
		}
		fmt.Fprintf(cli.out, "[%s]\n", c)
		if err := showRows(cli, grouped[c], settingColumns); err != nil {
			return err
		}
	}
	return nil
}
