// Package dataset builds evaluation datasets of "diff in, expected issues
// out" samples for benchmarking PR review tools, from both synthetic
// fixtures and real pull requests.
package dataset

import "github.com/lmchoi/nitpicker/internal/domain"

// Generator produces synthetic samples with known, labeled issues.
type Generator struct{}

// NewGenerator creates a synthetic sample generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// BugSamples returns diffs seeded with common defects: a nil dereference, a
// SQL injection, and an N+1 query.
func (g *Generator) BugSamples() []domain.Sample {
	return []domain.Sample{
		synthetic(`diff --git a/user_service.py b/user_service.py
index 1234567..abcdefg 100644
--- a/user_service.py
+++ b/user_service.py
@@ -10,7 +10,8 @@ def get_user_profile(user_id):
     user = User.objects.get(id=user_id)
-    return {"name": user.name, "email": user.email}
+    # New feature: include profile picture
+    return {"name": user.name, "email": user.email, "avatar": user.profile.avatar_url}`,
			[]domain.Issue{{
				Type:        "bug",
				Line:        13,
				Description: "Potential AttributeError if user.profile is None",
				Severity:    "high",
				Suggestion:  "Add null check: user.profile.avatar_url if user.profile else None",
			}}),
		synthetic(`diff --git a/search.py b/search.py
index 1234567..abcdefg 100644
--- a/search.py
+++ b/search.py
@@ -15,7 +15,8 @@ def search_users(query):
-    users = User.objects.filter(name__icontains=query)
+    # Switch to raw SQL for better performance
+    users = User.objects.raw(f"SELECT * FROM users WHERE name LIKE '%{query}%'")`,
			[]domain.Issue{{
				Type:        "security",
				Line:        18,
				Description: "SQL injection vulnerability in raw query",
				Severity:    "critical",
				Suggestion:  "Use parameterized queries or stick with ORM filtering",
			}}),
		synthetic(`diff --git a/blog.py b/blog.py
index 1234567..abcdefg 100644
--- a/blog.py
+++ b/blog.py
@@ -20,6 +20,9 @@ def get_blog_posts():
     posts = BlogPost.objects.all()
     result = []
     for post in posts:
+        # Add author info to each post
+        author = User.objects.get(id=post.author_id)
+        post.author_name = author.name
         result.append(post)`,
			[]domain.Issue{{
				Type:        "performance",
				Line:        24,
				Description: "N+1 query problem - fetching author for each post separately",
				Severity:    "medium",
				Suggestion:  "Use select_related: BlogPost.objects.select_related('author').all()",
			}}),
	}
}

// CleanSamples returns well-written diffs that should draw positive feedback
// rather than issues.
func (g *Generator) CleanSamples() []domain.Sample {
	sample := domain.Sample{
		Input: `diff --git a/validator.py b/validator.py
index 1234567..abcdefg 100644
--- a/validator.py
+++ b/validator.py
@@ -10,6 +10,15 @@ from typing import Optional

 class EmailValidator:
     """Validates email addresses with comprehensive checks"""
+
+    def __init__(self, allow_smtputf8: bool = True):
+        self.allow_smtputf8 = allow_smtputf8
+
+    def validate(self, email: str) -> bool:
+        """Validate email address format"""
+        if not email or '@' not in email:
+            return False
+        local, domain = email.rsplit('@', 1)
+        return self._validate_local(local) and self._validate_domain(domain)`,
		Target: domain.Target{
			ExpectedFeedback: []string{
				"Good: Comprehensive docstrings with Args/Returns",
				"Good: Proper error handling with try/catch",
				"Good: Type hints used appropriately",
				"Good: Clear method naming and structure",
			},
			IsCleanCode: true,
		},
		Metadata: syntheticMetadata(),
	}
	return []domain.Sample{sample}
}

func synthetic(diff string, issues []domain.Issue) domain.Sample {
	return domain.Sample{
		Input:    diff,
		Target:   domain.Target{ExpectedIssues: issues},
		Metadata: syntheticMetadata(),
	}
}

func syntheticMetadata() map[string]any {
	return map[string]any{
		"category":   "synthetic",
		"complexity": "medium",
		"language":   "python",
	}
}
