package candidate

// DemoProfile returns the built-in sample candidate so the workflow can be
// explored without uploading a document or configuring a model.
func DemoProfile() *Profile {
	return &Profile{
		Name:             "Dr. Ada Zhang",
		Institution:      "Tsinghua University",
		Ranking:          "Top 20 globally",
		Education:        "PhD",
		HIndex:           "42",
		PublicationCount: 2,
		Interests:        []string{"Immunology", "T cell", "Tumor microenvironment", "Single-cell"},
		Skills:           []string{"single-cell RNA sequencing", "flow cytometry", "CRISPR"},
		Publications: []Publication{
			{Title: "Checkpoint modulation in solid tumors", Journal: "Nature", Year: "2023"},
			{Title: "Single-cell atlas of immune niches", Journal: "Science", Year: "2022"},
		},
		Grants: []Grant{
			{Title: "NSFC Excellent Young Scientist", Amount: "$500K", Year: "2021", Sponsor: "NSFC"},
			{Title: "Translational immunotherapy consortium", Amount: "$1.2M", Year: "2023", Sponsor: "Industry"},
		},
		Notes: "示例数据：可直接用于体验匹配与邮件生成。",
	}
}
