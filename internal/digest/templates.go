package digest

import (
	"fmt"
	"strings"

	"github.com/sri657/interview-gap-matcher/internal/types"
)

// roleBlock is the shared role description all three templates embed.
func roleBlock(g types.Gap) string {
	return fmt.Sprintf("%s (%ss)\n"+
		"Program: %s\n"+
		"Time: %s\n"+
		"Dates: %s – %s",
		g.Site, g.Day, g.Lesson, g.Time, g.StartDate, g.EndDate)
}

// CampaignText is the Handshake campaign posting for one gap, meant to
// go out at 9 PM with a next-day follow-up.
func CampaignText(region string, g types.Gap) string {
	region = strings.ToUpper(region)
	return fmt.Sprintf("SUBJECT: KODELY %s AFTER SCHOOL HIRING\n\n"+
		"We're Kodely, a hands-on enrichment partner delivering high-energy "+
		"after-school programs in STEM, entrepreneurship, and creative learning.\n\n"+
		"We're staffing in-person after-school teaching roles in %s "+
		"for %s. These roles are commitment-based and require instructors "+
		"with prior experience teaching elementary-aged students.\n\n"+
		"Please read carefully before reaching out.\n"+
		"Do not apply if you cannot commit to all session dates, the exact times "+
		"listed, or if you do not have teaching experience with children.\n\n"+
		"Open Roles – %s\n"+
		"%s\n\n"+
		"Requirements (Mandatory)\n"+
		"• Prior teaching experience with elementary-aged children\n"+
		"• Strong classroom management and student engagement skills\n"+
		"• Reliable transportation and consistent on-time arrival\n"+
		"• Ability to commit to the full session without dropping due to "+
		"distance or schedule conflicts\n\n"+
		"If a role is accepted and later dropped, the instructor will be removed "+
		"from future placements with Kodely.\n\n"+
		"Interested?\n"+
		"Email talent@kodely.io with the subject line: %s HIRING\n"+
		"Include:\n"+
		"• The role(s) you are available for\n"+
		"• Confirmation that you can attend all listed dates and times\n"+
		"• Your resume\n"+
		"• If you require CPT/OPT\n\n"+
		"We're excited to connect with dependable educators ready to commit to "+
		"our %s programs.\n"+
		"—\nKodely Team",
		region, region, Season, region, roleBlock(g), region, region)
}

// BCCText is the mass-email job posting for one gap.
func BCCText(region string, g types.Gap) string {
	region = strings.ToUpper(region)
	return fmt.Sprintf("SUBJECT: %s After-School Instructors Needed (%s)\n\n"+
		"We're Kodely — a hands-on, high-energy enrichment partner working "+
		"with schools to deliver engaging after-school programs in STEM, "+
		"entrepreneurship, and creative learning.\n\n"+
		"We're now staffing in-person after-school teaching roles in "+
		"%s for %s. These roles are commitment-based and "+
		"require instructors who are reliable, experienced, and excited to work "+
		"with elementary-aged students.\n\n"+
		"Please read carefully before replying.\n"+
		"Do not apply if you cannot commit to all session dates, the exact "+
		"times listed, or if you do not have prior experience teaching children.\n\n"+
		"Open Roles – %s\n"+
		"%s\n\n"+
		"What We're Looking For (Required)\n"+
		"• Prior teaching experience with elementary-aged children (mandatory)\n"+
		"• Strong classroom management and student engagement skills\n"+
		"• Reliable transportation and consistent on-time arrival\n"+
		"• Flexibility and adaptability — working with kids requires it\n"+
		"• Ability to commit to the full session without dropping due to "+
		"distance or schedule conflicts\n\n"+
		"Important:\n"+
		"If a role is accepted and later dropped, the instructor will be removed "+
		"from future placements with Kodely.\n\n"+
		"Interested?\n"+
		"Only reply to this email if you can fully commit to the dates, times, "+
		"location, and have teaching experience with children. If so, we'll "+
		"schedule an interview.\n\n"+
		"We're excited to bring passionate, dependable educators into our "+
		"%s programs — and we're looking forward to connecting "+
		"with the right fit.",
		region, Season, region, Season, region, roleBlock(g), region)
}

// FormEmailText is the direct outreach to existing leaders who filled
// the confirmation form; they get first pass before public postings.
func FormEmailText(region string, g types.Gap) string {
	region = strings.ToUpper(region)
	district := ""
	if g.District != "" {
		district = ", " + g.District
	}
	return fmt.Sprintf("Hello,\n\n"+
		"We're staffing an in-person after-school role in "+
		"%s%s for %s and are reaching out to "+
		"existing Kodely instructors first.\n\n"+
		"This is a commitment-based placement. Please only respond if you can "+
		"attend every session, arrive on time, and are comfortable leading an "+
		"elementary group independently.\n\n"+
		"Available Placement – %s\n"+
		"%s\n\n"+
		"Requirements (Required to Confirm)\n"+
		"• Prior experience teaching elementary-aged students\n"+
		"• Strong classroom management and student engagement\n"+
		"• Reliable transportation and consistent on-time arrival\n"+
		"• Full-session commitment (no partial availability)\n\n"+
		"Please note: accepting a role and later dropping it will remove you "+
		"from future Kodely placements.\n\n"+
		"Next Steps\n"+
		"Reply to this email confirming:\n"+
		"• You can commit to all dates and times\n"+
		"• Your continued interest in this placement\n\n"+
		"We'll confirm the match once availability is verified.",
		region, district, Season, region, roleBlock(g))
}
