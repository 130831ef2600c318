package cmd

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/iksnae/readgye-cli/internal"
	"github.com/spf13/cobra"
)

// contactCategories maps the wire value to its label
var contactCategories = map[string]string{
	"service": "서비스 이용",
	"account": "계정 문제",
	"payment": "결제/환불",
	"bug":     "오류 신고",
	"etc":     "제안/기타",
}

const maxContactLength = 1000

var (
	contactCategory string
	contactTitle    string
	contactContent  string
)

var contactCmd = &cobra.Command{
	Use:   "contact",
	Short: "Send an inquiry to the operators",
	Example: `  readgye contact --category bug --title "업로드 오류" --content "PDF 업로드가 멈춥니다."`,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		req, err := buildContactRequest(contactCategory, contactTitle, contactContent)
		if err != nil {
			return err
		}
		client, err := a.client()
		if err != nil {
			return err
		}

		if err := client.SubmitContact(cmd.Context(), req); err != nil {
			return errors.New(internal.UserMessage(err, "문의 접수에 실패했습니다."))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "[%s] 문의가 접수되었습니다.\n", contactCategories[req.Category])
		return nil
	}),
}

// buildContactRequest validates the inquiry fields in form order
func buildContactRequest(category, title, content string) (*internal.ContactRequest, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, errors.New("문의 유형을 선택해 주세요. (--category " + strings.Join(contactCategoryKeys(), "|") + ")")
	}
	if _, ok := contactCategories[category]; !ok {
		return nil, fmt.Errorf("unknown category %q (use %s)", category, strings.Join(contactCategoryKeys(), ", "))
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("제목을 입력해 주세요.")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.New("내용을 입력해 주세요.")
	}
	if n := utf8.RuneCountInString(content); n > maxContactLength {
		return nil, fmt.Errorf("내용은 %d자 이하로 입력해 주세요. (현재 %d자)", maxContactLength, n)
	}

	return &internal.ContactRequest{Category: category, Title: title, Content: content}, nil
}

func contactCategoryKeys() []string {
	keys := make([]string, 0, len(contactCategories))
	for k := range contactCategories {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	rootCmd.AddCommand(contactCmd)
	contactCmd.Flags().StringVarP(&contactCategory, "category", "c", "", "Inquiry type: "+strings.Join(contactCategoryKeys(), ", "))
	contactCmd.Flags().StringVarP(&contactTitle, "title", "t", "", "Subject")
	contactCmd.Flags().StringVar(&contactContent, "content", "", "Message (up to 1000 characters)")
}
